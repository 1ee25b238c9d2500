package actions

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

func newTestActions(t *testing.T) (*Actions, *store.MemStore, store.Paths) {
	t.Helper()
	s := store.NewMemStore()
	paths := store.PathsFor("test")
	return New(s, paths), s, paths
}

func seedUser(t *testing.T, s *store.MemStore, paths store.Paths, u roster.User) roster.User {
	t.Helper()
	id, err := s.Create(context.Background(), paths.Users, u)
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	u.ID = id
	return u
}

func fetchUser(t *testing.T, s *store.MemStore, paths store.Paths, id string) roster.User {
	t.Helper()
	var u roster.User
	if err := s.Get(context.Background(), paths.Users, id, &u); err != nil {
		t.Fatalf("fetch user: %v", err)
	}
	return u
}

func TestAssignSR_BlockedAtThreshold(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer, SRThreshold: 2, CurrentSRCount: 2})
	writesBefore := s.WriteCount()

	err := a.AssignSR(context.Background(), u, false)
	if !errors.Is(err, ErrThresholdReached) {
		t.Fatalf("expected ErrThresholdReached, got: %v", err)
	}
	if s.WriteCount() != writesBefore {
		t.Errorf("blocked assignment must issue zero writes")
	}

	// The confirmed, forced path performs exactly one write.
	if err := a.AssignSR(context.Background(), u, true); err != nil {
		t.Fatalf("forced AssignSR: %v", err)
	}
	if got := s.WriteCount(); got != writesBefore+1 {
		t.Errorf("writes = %d, want %d", got, writesBefore+1)
	}
	if got := fetchUser(t, s, paths, u.ID).CurrentSRCount; got != 3 {
		t.Errorf("count = %d, want 3", got)
	}
}

func TestAssignSR_UnderThreshold(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer, SRThreshold: 5, CurrentSRCount: 1})

	if err := a.AssignSR(context.Background(), u, false); err != nil {
		t.Fatalf("AssignSR: %v", err)
	}
	if got := fetchUser(t, s, paths, u.ID).CurrentSRCount; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
}

func TestAssignSR_ZeroThresholdAlwaysGates(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "New", Role: roster.RoleEngineer})

	err := a.AssignSR(context.Background(), u, false)
	if !errors.Is(err, ErrThresholdReached) {
		t.Errorf("zero threshold must gate unforced assignment, got: %v", err)
	}
}

func TestResetSR(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer, SRThreshold: 2, CurrentSRCount: 7})

	if err := a.ResetSR(context.Background(), u); err != nil {
		t.Fatalf("ResetSR: %v", err)
	}
	if got := fetchUser(t, s, paths, u.ID).CurrentSRCount; got != 0 {
		t.Errorf("count = %d, want 0", got)
	}
}

func TestAddVacation(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{
		Name: "Eve", Role: roster.RoleEngineer,
		VacationDates: []string{"2024-03-01", "2024-05-10"},
	})

	if err := a.AddVacation(context.Background(), u, "2024-01-01"); err != nil {
		t.Fatalf("AddVacation: %v", err)
	}
	got := fetchUser(t, s, paths, u.ID).VacationDates
	want := []string{"2024-01-01", "2024-03-01", "2024-05-10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestAddVacation_DuplicateShortCircuits(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{
		Name: "Eve", Role: roster.RoleEngineer,
		VacationDates: []string{"2024-03-01"},
	})
	writesBefore := s.WriteCount()

	err := a.AddVacation(context.Background(), u, "2024-03-01")
	if !errors.Is(err, ErrDuplicateDate) {
		t.Fatalf("expected ErrDuplicateDate, got: %v", err)
	}
	if s.WriteCount() != writesBefore {
		t.Error("duplicate add must not write")
	}
}

func TestAddVacation_RejectsMalformedDate(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer})

	err := a.AddVacation(context.Background(), u, "01/02/2024")
	if !errors.Is(err, ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got: %v", err)
	}
}

func TestRemoveVacation(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{
		Name: "Eve", Role: roster.RoleEngineer,
		VacationDates: []string{"2024-01-01", "2024-03-01"},
	})

	if err := a.RemoveVacation(context.Background(), u, "2024-01-01"); err != nil {
		t.Fatalf("RemoveVacation: %v", err)
	}
	got := fetchUser(t, s, paths, u.ID).VacationDates
	if !reflect.DeepEqual(got, []string{"2024-03-01"}) {
		t.Errorf("dates = %v", got)
	}

	writesBefore := s.WriteCount()
	err := a.RemoveVacation(context.Background(), u, "1999-01-01")
	if !errors.Is(err, ErrDateNotBooked) {
		t.Errorf("expected ErrDateNotBooked, got: %v", err)
	}
	if s.WriteCount() != writesBefore {
		t.Error("missing date must not write")
	}
}

func TestCreateUser_Validation(t *testing.T) {
	a, _, _ := newTestActions(t)
	ctx := context.Background()

	if _, err := a.CreateUser(ctx, roster.User{Name: "  ", Role: roster.RoleViewer}); !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got: %v", err)
	}
	if _, err := a.CreateUser(ctx, roster.User{Name: "C", Role: roster.Role("Contractor")}); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got: %v", err)
	}

	id, err := a.CreateUser(ctx, roster.User{Name: "Ada", Role: roster.RoleAdmin})
	if err != nil || id == "" {
		t.Errorf("CreateUser: %v, id=%q", err, id)
	}
}

func TestSetRole(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Vic", Role: roster.RoleViewer})
	ctx := context.Background()

	if err := a.SetRole(ctx, u.ID, roster.RoleEngineer); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if got := fetchUser(t, s, paths, u.ID).Role; got != roster.RoleEngineer {
		t.Errorf("role = %s", got)
	}

	if err := a.SetRole(ctx, u.ID, roster.Role("Wizard")); !errors.Is(err, ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got: %v", err)
	}
}

func TestSkillLifecycle(t *testing.T) {
	a, s, paths := newTestActions(t)
	ctx := context.Background()

	id, err := a.CreateSkill(ctx, "Go")
	if err != nil {
		t.Fatalf("CreateSkill: %v", err)
	}
	if err := a.RenameSkill(ctx, id, "Golang"); err != nil {
		t.Fatalf("RenameSkill: %v", err)
	}
	var skill roster.Skill
	if err := s.Get(ctx, paths.Skills, id, &skill); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if skill.Name != "Golang" {
		t.Errorf("name = %q", skill.Name)
	}
	if err := a.DeleteSkill(ctx, id); err != nil {
		t.Fatalf("DeleteSkill: %v", err)
	}
	if err := s.Get(ctx, paths.Skills, id, &skill); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestMutationFailureLeavesStateUntouched(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer, SRThreshold: 5, CurrentSRCount: 1})

	boom := errors.New("store unreachable")
	s.FailWrites(boom)
	if err := a.AssignSR(context.Background(), u, false); !errors.Is(err, boom) {
		t.Fatalf("expected store failure, got: %v", err)
	}
	s.FailWrites(nil)

	if got := fetchUser(t, s, paths, u.ID).CurrentSRCount; got != 1 {
		t.Errorf("count = %d, failed write must not mutate", got)
	}
}

type recordingNotifier struct {
	assigned int
	forced   bool
	resets   int
	vacation []string
}

func (n *recordingNotifier) SRAssigned(u roster.User, newCount int, forced bool) {
	n.assigned++
	n.forced = forced
}
func (n *recordingNotifier) SRReset(u roster.User) { n.resets++ }
func (n *recordingNotifier) VacationAdded(u roster.User, date string) {
	n.vacation = append(n.vacation, date)
}

func TestNotifierReceivesEvents(t *testing.T) {
	a, s, paths := newTestActions(t)
	u := seedUser(t, s, paths, roster.User{Name: "Eve", Role: roster.RoleEngineer, SRThreshold: 1, CurrentSRCount: 1})

	n := &recordingNotifier{}
	a.SetNotifier(n)
	ctx := context.Background()

	if err := a.AssignSR(ctx, u, true); err != nil {
		t.Fatalf("AssignSR: %v", err)
	}
	if err := a.ResetSR(ctx, u); err != nil {
		t.Fatalf("ResetSR: %v", err)
	}
	if err := a.AddVacation(ctx, u, "2024-07-04"); err != nil {
		t.Fatalf("AddVacation: %v", err)
	}

	if n.assigned != 1 || !n.forced {
		t.Errorf("assigned = %d forced = %v", n.assigned, n.forced)
	}
	if n.resets != 1 {
		t.Errorf("resets = %d", n.resets)
	}
	if !reflect.DeepEqual(n.vacation, []string{"2024-07-04"}) {
		t.Errorf("vacation = %v", n.vacation)
	}
}
