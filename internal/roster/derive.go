package roster

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Partition groups users into the four role buckets. Users whose role
// is outside the enumeration land in Unknown so that the partition
// stays total: every input record appears in exactly one bucket.
type Partition struct {
	Admins    []User
	Managers  []User
	Engineers []User
	Viewers   []User
	Unknown   []User
}

// PartitionByRole splits users by role. Input order is preserved
// within each bucket.
func PartitionByRole(users []User) Partition {
	var p Partition
	for _, u := range users {
		switch u.Role {
		case RoleAdmin:
			p.Admins = append(p.Admins, u)
		case RoleManager:
			p.Managers = append(p.Managers, u)
		case RoleEngineer:
			p.Engineers = append(p.Engineers, u)
		case RoleViewer:
			p.Viewers = append(p.Viewers, u)
		default:
			p.Unknown = append(p.Unknown, u)
		}
	}
	return p
}

// ReportsOf returns the engineers whose ManagerID equals managerID, in
// input order. An empty managerID matches nothing.
func ReportsOf(users []User, managerID string) []User {
	if managerID == "" {
		return nil
	}
	var reports []User
	for _, u := range users {
		if u.Role == RoleEngineer && u.ManagerID == managerID {
			reports = append(reports, u)
		}
	}
	return reports
}

// ResolveSkillNames maps skill IDs to names, preserving the order of
// ids. IDs with no matching skill are dropped, not placeholdered.
func ResolveSkillNames(ids []string, skills []Skill) []string {
	if len(ids) == 0 {
		return nil
	}
	byID := make(map[string]string, len(skills))
	for _, s := range skills {
		byID[s.ID] = s.Name
	}
	var names []string
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// UnassignedOrAdmins returns the "other users" bucket of the roster
// view: admins, plus non-managers with no manager set. An unassigned
// manager is deliberately excluded (it heads its own empty group).
func UnassignedOrAdmins(users []User) []User {
	var others []User
	for _, u := range users {
		if u.Role == RoleAdmin || (u.Role != RoleManager && u.ManagerID == "") {
			others = append(others, u)
		}
	}
	return others
}

// SRStatus is an engineer's service-request load against their ceiling.
type SRStatus struct {
	Current   int
	Threshold int

	// Over is true when the threshold is nonzero and the current count
	// has reached it. A zero threshold is never "over" by this
	// comparison, but assignment past it still requires the forced
	// path (0 >= 0 blocks the unforced gate).
	Over bool
}

// SRStatusOf computes the SR load pair for a user.
func SRStatusOf(u User) SRStatus {
	return SRStatus{
		Current:   u.CurrentSRCount,
		Threshold: u.SRThreshold,
		Over:      u.SRThreshold > 0 && u.CurrentSRCount >= u.SRThreshold,
	}
}

// AtThreshold reports whether an unforced SR assignment to u must be
// blocked pending confirmation: current >= threshold, including the
// zero-threshold case.
func AtThreshold(u User) bool {
	return u.CurrentSRCount >= u.SRThreshold
}

// SortUsers orders users in place: role rank ascending (Admin first),
// then case-insensitive collated name, ascending. The sort is stable,
// so records with equal keys keep their relative order from the last
// snapshot.
func SortUsers(users []User) {
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(users, func(i, j int) bool {
		ri, rj := users[i].Role.Rank(), users[j].Role.Rank()
		if ri != rj {
			return ri < rj
		}
		return c.CompareString(users[i].Name, users[j].Name) < 0
	})
}

// FindUser returns the user with the given ID, if present.
func FindUser(users []User, id string) (User, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// ManagerName resolves a manager reference to a display name. Dangling
// or empty references resolve to "N/A".
func ManagerName(users []User, managerID string) string {
	if managerID == "" {
		return "N/A"
	}
	if m, ok := FindUser(users, managerID); ok {
		return m.Name
	}
	return "N/A"
}
