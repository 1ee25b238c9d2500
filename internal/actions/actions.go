// Package actions implements the roster mutations. Every action
// validates its preconditions locally, issues at most one store write,
// and reports failure to the caller unchanged. The live subscription,
// not the action, makes the result visible.
package actions

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

var (
	// ErrThresholdReached indicates an unforced SR assignment was
	// blocked because the engineer is at or past their threshold.
	// Callers confirm and retry with force.
	ErrThresholdReached = errors.New("sr threshold reached")

	// ErrDuplicateDate indicates the vacation date is already booked.
	// Informational; no write was issued.
	ErrDuplicateDate = errors.New("vacation date already booked")

	// ErrDateNotBooked indicates the vacation date to remove was not
	// present. No write was issued.
	ErrDateNotBooked = errors.New("vacation date not booked")

	// ErrInvalidDate indicates a malformed calendar date.
	ErrInvalidDate = errors.New("invalid date (want YYYY-MM-DD)")

	// ErrInvalidRole indicates a role outside the enumeration.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyName indicates a missing display name.
	ErrEmptyName = errors.New("name cannot be empty")
)

// Notifier receives roster events for out-of-band delivery. A nil
// Notifier is silently skipped.
type Notifier interface {
	// SRAssigned fires after a successful assignment. forced is true
	// when the threshold gate was overridden.
	SRAssigned(user roster.User, newCount int, forced bool)

	// SRReset fires after a successful counter reset.
	SRReset(user roster.User)

	// VacationAdded fires after a vacation date is booked.
	VacationAdded(user roster.User, date string)
}

// Actions issues roster mutations against the store.
type Actions struct {
	client   store.Client
	paths    store.Paths
	notifier Notifier
}

// New creates an Actions bound to a store and its collection paths.
func New(client store.Client, paths store.Paths) *Actions {
	return &Actions{client: client, paths: paths}
}

// SetNotifier attaches an event notifier. Pass nil to detach.
func (a *Actions) SetNotifier(n Notifier) {
	a.notifier = n
}

// CreateUser stores a new user record and returns its assigned ID.
func (a *Actions) CreateUser(ctx context.Context, u roster.User) (string, error) {
	if strings.TrimSpace(u.Name) == "" {
		return "", ErrEmptyName
	}
	if !u.Role.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRole, u.Role)
	}
	return a.client.Create(ctx, a.paths.Users, u)
}

// UpdateUser merges the given fields into a user record.
func (a *Actions) UpdateUser(ctx context.Context, id string, fields map[string]any) error {
	return a.client.Update(ctx, a.paths.Users, id, fields)
}

// SetRole changes a user's role.
func (a *Actions) SetRole(ctx context.Context, id string, role roster.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}
	return a.client.Update(ctx, a.paths.Users, id, map[string]any{"role": role})
}

// SetManager assigns or clears a user's manager reference.
func (a *Actions) SetManager(ctx context.Context, id, managerID string) error {
	return a.client.Update(ctx, a.paths.Users, id, map[string]any{"manager_id": managerID})
}

// SetSRThreshold changes an engineer's SR ceiling.
func (a *Actions) SetSRThreshold(ctx context.Context, id string, threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", threshold)
	}
	return a.client.Update(ctx, a.paths.Users, id, map[string]any{"sr_threshold": threshold})
}

// DeleteUser removes a user record.
func (a *Actions) DeleteUser(ctx context.Context, id string) error {
	return a.client.Delete(ctx, a.paths.Users, id)
}

// CreateSkill stores a new skill and returns its assigned ID.
func (a *Actions) CreateSkill(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	return a.client.Create(ctx, a.paths.Skills, roster.Skill{Name: name})
}

// RenameSkill changes a skill's name.
func (a *Actions) RenameSkill(ctx context.Context, id, name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return a.client.Update(ctx, a.paths.Skills, id, map[string]any{"name": name})
}

// DeleteSkill removes a skill record. User records referencing it keep
// the dangling ID; rendering drops it.
func (a *Actions) DeleteSkill(ctx context.Context, id string) error {
	return a.client.Delete(ctx, a.paths.Skills, id)
}

// SetSkills replaces a user's skill references.
func (a *Actions) SetSkills(ctx context.Context, id string, skillIDs []string) error {
	return a.client.Update(ctx, a.paths.Users, id, map[string]any{"skills": skillIDs})
}

// AssignSR increments a user's SR counter by one. Unforced assignment
// is blocked with ErrThresholdReached when the counter has reached the
// threshold (a zero threshold always blocks); the confirmed, forced
// path performs the same single increment.
func (a *Actions) AssignSR(ctx context.Context, u roster.User, force bool) error {
	if !force && roster.AtThreshold(u) {
		return fmt.Errorf("%w: %d/%d for %s", ErrThresholdReached, u.CurrentSRCount, u.SRThreshold, u.Name)
	}
	newCount := u.CurrentSRCount + 1
	err := a.client.Update(ctx, a.paths.Users, u.ID, map[string]any{"current_sr_count": newCount})
	if err != nil {
		return err
	}
	if a.notifier != nil {
		a.notifier.SRAssigned(u, newCount, force)
	}
	return nil
}

// ResetSR sets a user's SR counter to zero regardless of its prior
// value. The caller gates this behind confirmation.
func (a *Actions) ResetSR(ctx context.Context, u roster.User) error {
	err := a.client.Update(ctx, a.paths.Users, u.ID, map[string]any{"current_sr_count": 0})
	if err != nil {
		return err
	}
	if a.notifier != nil {
		a.notifier.SRReset(u)
	}
	return nil
}

// AddVacation books a vacation date for a user. A date already booked
// short-circuits with ErrDuplicateDate and no write; otherwise the
// stored sequence stays unique and sorted.
func (a *Actions) AddVacation(ctx context.Context, u roster.User, date string) error {
	if !roster.ValidDate(date) {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	dates, added := roster.AddVacationDate(u.VacationDates, date)
	if !added {
		return fmt.Errorf("%w: %s", ErrDuplicateDate, date)
	}
	err := a.client.Update(ctx, a.paths.Users, u.ID, map[string]any{"vacation_dates": dates})
	if err != nil {
		return err
	}
	if a.notifier != nil {
		a.notifier.VacationAdded(u, date)
	}
	return nil
}

// RemoveVacation unbooks a vacation date. A date that was never booked
// short-circuits with ErrDateNotBooked and no write.
func (a *Actions) RemoveVacation(ctx context.Context, u roster.User, date string) error {
	dates, found := roster.RemoveVacationDate(u.VacationDates, date)
	if !found {
		return fmt.Errorf("%w: %s", ErrDateNotBooked, date)
	}
	return a.client.Update(ctx, a.paths.Users, u.ID, map[string]any{"vacation_dates": dates})
}
