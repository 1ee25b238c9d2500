// Package roster defines the crewdeck data model and the pure
// derivation functions the dashboards are built from.
package roster

// Role classifies a user's position in the roster. The four roles map
// to the four dashboards: admins manage the roster, managers track
// their reports, engineers carry service-request load, viewers read.
type Role string

// Roster roles, in rank order.
const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEngineer Role = "Engineer"
	RoleViewer   Role = "Viewer"
)

// Roles lists the valid roles in rank order.
var Roles = []Role{RoleAdmin, RoleManager, RoleEngineer, RoleViewer}

// Valid reports whether r is one of the four roster roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleEngineer, RoleViewer:
		return true
	}
	return false
}

// Rank returns the sort rank for a role (Admin=0 .. Viewer=3).
// Unknown roles rank after Viewer.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 0
	case RoleManager:
		return 1
	case RoleEngineer:
		return 2
	case RoleViewer:
		return 3
	}
	return 4
}

// User represents one person in the roster.
type User struct {
	// ID is the store-assigned document ID, stable for the record's
	// lifetime.
	ID string `json:"id"`

	// Name is the display name.
	Name string `json:"name"`

	// Email is the user's email address.
	Email string `json:"email,omitempty"`

	// Role is one of the four roster roles.
	Role Role `json:"role"`

	// ManagerID references another user's ID. Meaningful only for
	// engineers and viewers; dangling references render as "N/A".
	ManagerID string `json:"manager_id,omitempty"`

	// WorkingHours is a free-text schedule description, e.g. "9-5 CET".
	WorkingHours string `json:"working_hours,omitempty"`

	// ShiftPattern is a free-text shift description, e.g. "on-call week 2".
	ShiftPattern string `json:"shift_pattern,omitempty"`

	// VacationDates holds ISO calendar dates (YYYY-MM-DD), unique and
	// sorted ascending. Every mutator keeps this invariant.
	VacationDates []string `json:"vacation_dates,omitempty"`

	// Skills references Skill IDs. Dangling entries are dropped at
	// render time.
	Skills []string `json:"skills,omitempty"`

	// SRThreshold is the service-request ceiling. Meaningful only for
	// engineers.
	SRThreshold int `json:"sr_threshold"`

	// CurrentSRCount is the open service-request counter. May
	// legitimately exceed SRThreshold; that is the over-threshold
	// condition, not a violation.
	CurrentSRCount int `json:"current_sr_count"`
}

// Skill is a named capability users can reference by ID. Names are not
// required to be unique.
type Skill struct {
	// ID is the store-assigned document ID.
	ID string `json:"id"`

	// Name is the free-text skill name.
	Name string `json:"name"`
}
