package roster

import (
	"reflect"
	"testing"
)

func TestPartitionByRole_Total(t *testing.T) {
	users := []User{
		{ID: "1", Name: "Ada", Role: RoleAdmin},
		{ID: "2", Name: "Mel", Role: RoleManager},
		{ID: "3", Name: "Eng", Role: RoleEngineer},
		{ID: "4", Name: "Vic", Role: RoleViewer},
		{ID: "5", Name: "Con", Role: Role("Contractor")},
	}

	p := PartitionByRole(users)

	total := len(p.Admins) + len(p.Managers) + len(p.Engineers) + len(p.Viewers) + len(p.Unknown)
	if total != len(users) {
		t.Fatalf("partition total = %d, want %d", total, len(users))
	}
	if len(p.Admins) != 1 || p.Admins[0].ID != "1" {
		t.Errorf("admins = %v", p.Admins)
	}
	if len(p.Unknown) != 1 || p.Unknown[0].ID != "5" {
		t.Errorf("unknown = %v", p.Unknown)
	}

	// No duplicates: every ID appears exactly once across buckets.
	seen := map[string]int{}
	for _, bucket := range [][]User{p.Admins, p.Managers, p.Engineers, p.Viewers, p.Unknown} {
		for _, u := range bucket {
			seen[u.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("user %s appears %d times", id, n)
		}
	}
}

func TestReportsOf(t *testing.T) {
	users := []User{
		{ID: "m1", Name: "Mel", Role: RoleManager},
		{ID: "e1", Name: "Eve", Role: RoleEngineer, ManagerID: "m1"},
		{ID: "e2", Name: "Eli", Role: RoleEngineer, ManagerID: "m2"},
		{ID: "v1", Name: "Vic", Role: RoleViewer, ManagerID: "m1"},
	}

	reports := ReportsOf(users, "m1")
	if len(reports) != 1 || reports[0].ID != "e1" {
		t.Errorf("reports of m1 = %v, want [e1]", reports)
	}

	// Viewers are not reports even with a matching manager.
	if got := ReportsOf(users, ""); got != nil {
		t.Errorf("reports of empty manager = %v, want nil", got)
	}
}

func TestResolveSkillNames_DropsDangling(t *testing.T) {
	skills := []Skill{
		{ID: "s1", Name: "Go"},
		{ID: "s2", Name: "Kubernetes"},
	}

	names := ResolveSkillNames([]string{"s2", "missing", "s1"}, skills)
	want := []string{"Kubernetes", "Go"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("names = %v, want %v", names, want)
	}

	if got := ResolveSkillNames(nil, skills); got != nil {
		t.Errorf("nil ids = %v, want nil", got)
	}
}

func TestUnassignedOrAdmins(t *testing.T) {
	users := []User{
		{ID: "a1", Role: RoleAdmin, ManagerID: "m1"},
		{ID: "m1", Role: RoleManager},                   // unassigned manager: excluded
		{ID: "e1", Role: RoleEngineer},                  // unassigned engineer: included
		{ID: "e2", Role: RoleEngineer, ManagerID: "m1"}, // assigned: excluded
		{ID: "v1", Role: RoleViewer},                    // unassigned viewer: included
	}

	others := UnassignedOrAdmins(users)
	ids := make([]string, 0, len(others))
	for _, u := range others {
		ids = append(ids, u.ID)
	}
	want := []string{"a1", "e1", "v1"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("others = %v, want %v", ids, want)
	}
}

func TestSRStatusOf(t *testing.T) {
	tests := []struct {
		name      string
		user      User
		wantOver  bool
		wantBlock bool
	}{
		{"under threshold", User{CurrentSRCount: 1, SRThreshold: 3}, false, false},
		{"at threshold", User{CurrentSRCount: 2, SRThreshold: 2}, true, true},
		{"over threshold", User{CurrentSRCount: 5, SRThreshold: 2}, true, true},
		{"zero threshold never over", User{CurrentSRCount: 0, SRThreshold: 0}, false, true},
		{"zero threshold with load", User{CurrentSRCount: 3, SRThreshold: 0}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := SRStatusOf(tt.user)
			if status.Over != tt.wantOver {
				t.Errorf("Over = %v, want %v", status.Over, tt.wantOver)
			}
			if got := AtThreshold(tt.user); got != tt.wantBlock {
				t.Errorf("AtThreshold = %v, want %v", got, tt.wantBlock)
			}
			if status.Current != tt.user.CurrentSRCount || status.Threshold != tt.user.SRThreshold {
				t.Errorf("status = %+v", status)
			}
		})
	}
}

func TestSortUsers_RoleRankThenName(t *testing.T) {
	users := []User{
		{ID: "1", Name: "zoe", Role: RoleViewer},
		{ID: "2", Name: "Bea", Role: RoleEngineer},
		{ID: "3", Name: "ada", Role: RoleEngineer},
		{ID: "4", Name: "Max", Role: RoleAdmin},
		{ID: "5", Name: "Mia", Role: RoleManager},
	}

	SortUsers(users)

	got := make([]string, len(users))
	for i, u := range users {
		got[i] = u.ID
	}
	// Admin, Manager, Engineers by case-insensitive name, Viewer.
	want := []string{"4", "5", "3", "2", "1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestSortUsers_StableOnEqualKeys(t *testing.T) {
	users := []User{
		{ID: "first", Name: "Sam", Role: RoleEngineer},
		{ID: "second", Name: "sam", Role: RoleEngineer},
	}

	SortUsers(users)

	// Case-insensitive comparison treats the names as equal; the
	// relative order from the snapshot must survive.
	if users[0].ID != "first" || users[1].ID != "second" {
		t.Errorf("equal-key order changed: %v, %v", users[0].ID, users[1].ID)
	}
}

func TestSortUsers_UnknownRoleLast(t *testing.T) {
	users := []User{
		{ID: "c", Name: "Cee", Role: Role("Contractor")},
		{ID: "v", Name: "Vee", Role: RoleViewer},
	}

	SortUsers(users)

	if users[0].ID != "v" || users[1].ID != "c" {
		t.Errorf("unknown role should sort last, got %v then %v", users[0].ID, users[1].ID)
	}
}

func TestManagerName(t *testing.T) {
	users := []User{{ID: "m1", Name: "Mel", Role: RoleManager}}

	if got := ManagerName(users, "m1"); got != "Mel" {
		t.Errorf("ManagerName = %q, want %q", got, "Mel")
	}
	if got := ManagerName(users, "dangling"); got != "N/A" {
		t.Errorf("dangling = %q, want N/A", got)
	}
	if got := ManagerName(users, ""); got != "N/A" {
		t.Errorf("empty = %q, want N/A", got)
	}
}

func TestRoleRank(t *testing.T) {
	ranks := []Role{RoleAdmin, RoleManager, RoleEngineer, RoleViewer}
	for i, r := range ranks {
		if r.Rank() != i {
			t.Errorf("%s rank = %d, want %d", r, r.Rank(), i)
		}
	}
	if Role("Contractor").Rank() != 4 {
		t.Errorf("unknown rank = %d, want 4", Role("Contractor").Rank())
	}
	if Role("Contractor").Valid() {
		t.Error("Contractor should not be a valid role")
	}
}
