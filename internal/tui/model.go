// Package tui implements the crewdeck dashboard. The model is a
// router over the signed-in user's role: each role gets its own
// dashboard, and users without a session or with an unrecognized role
// land on a dead-end screen offering sign-out and quit only.
//
// The dashboard never mutates its own copy of the roster. Mutations go
// to the store, and the screen updates when the live subscription
// delivers the next snapshot.
package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ksteinfeldt/crewdeck/internal/actions"
	"github.com/ksteinfeldt/crewdeck/internal/cache"
	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/session"
)

// viewState identifies which screen the router shows.
type viewState int

const (
	viewLoading viewState = iota
	viewNoSession
	viewAdmin
	viewManager
	viewEngineer
	viewViewer
	viewUnknownRole
	viewError
)

// rosterChangedMsg signals that the live cache holds a new snapshot.
type rosterChangedMsg struct{}

// mutationResultMsg is sent when an asynchronous mutation completes.
// On success the subscription delivers the data update and the status
// line shows the applied notice; on error it shows the failure.
type mutationResultMsg struct {
	err     error
	applied string
}

// statusFadeMsg clears the transient status line after a delay. The
// sequence number identifies which notice the fade belongs to, so a
// fade scheduled for an old notice cannot clear a newer one.
type statusFadeMsg struct {
	seq int
}

// statusFadeDelay is how long status notices stay visible.
const statusFadeDelay = 3 * time.Second

// mutationTimeout bounds each store write issued from the dashboard.
const mutationTimeout = 10 * time.Second

// Model is the dashboard's bubbletea model.
type Model struct {
	roster  *cache.Roster
	session *session.Provider
	actions *actions.Actions
	keys    KeyMap
	changes <-chan struct{}

	users  []roster.User
	skills []roster.Skill
	state  viewState

	cursor  int
	confirm *ConfirmModal

	// Date entry for booking or unbooking vacation dates.
	dateInput  textinput.Model
	entering   bool
	removing   bool
	dateTarget roster.User

	status    string
	statusErr bool
	statusSeq int
	loadErr   error

	width, height int
	ready         bool
}

// NewModel creates a dashboard bound to the live cache, the session
// provider, and the mutation layer.
func NewModel(rc *cache.Roster, sess *session.Provider, act *actions.Actions) Model {
	input := textinput.New()
	input.Placeholder = "YYYY-MM-DD"
	input.CharLimit = 10
	input.Width = 12

	model := Model{
		roster:    rc,
		session:   sess,
		actions:   act,
		keys:      DefaultKeyMap,
		changes:   rc.Changes(),
		dateInput: input,
	}
	model.refresh()
	return model
}

// Init implements tea.Model. Starts listening for cache changes.
func (m Model) Init() tea.Cmd {
	return listenForChange(m.changes)
}

// listenForChange returns a tea.Cmd that blocks until the cache
// signals a new snapshot, then delivers it as a rosterChangedMsg.
func listenForChange(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return rosterChangedMsg{}
	}
}

// refresh pulls the current snapshot out of the cache, lets the
// session re-resolve the signed-in user from it, and recomputes the
// router state. Called once at construction and on every change signal.
func (m *Model) refresh() {
	m.users = m.roster.Users()
	m.skills = m.roster.Skills()
	m.session.RefreshFrom(m.users)
	m.recompute()
	m.clampCursor()
}

// recompute derives the router state from the session and cache.
func (m *Model) recompute() {
	if err := m.roster.Err(); err != nil {
		m.state = viewError
		m.loadErr = err
		return
	}
	if !m.session.Ready() || m.roster.Loading() {
		m.state = viewLoading
		return
	}
	u, ok := m.session.CurrentUser()
	if !ok {
		m.state = viewNoSession
		return
	}
	switch u.Role {
	case roster.RoleAdmin:
		m.state = viewAdmin
	case roster.RoleManager:
		m.state = viewManager
	case roster.RoleEngineer:
		m.state = viewEngineer
	case roster.RoleViewer:
		m.state = viewViewer
	default:
		m.state = viewUnknownRole
	}
}

// rows returns the selectable user rows for the active dashboard.
func (m Model) rows() []roster.User {
	switch m.state {
	case viewAdmin:
		return m.users
	case viewManager:
		u, ok := m.session.CurrentUser()
		if !ok {
			return nil
		}
		return roster.ReportsOf(m.users, u.ID)
	default:
		return nil
	}
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// selected returns the user row under the cursor, if any.
func (m Model) selected() (roster.User, bool) {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return roster.User{}, false
	}
	return rows[m.cursor], true
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true

	case rosterChangedMsg:
		m.refresh()
		return m, listenForChange(m.changes)

	case mutationResultMsg:
		status, isErr := describeResult(message)
		return m, m.setStatus(status, isErr)

	case statusFadeMsg:
		if message.seq == m.statusSeq {
			m.status = ""
			m.statusErr = false
		}

	case tea.KeyMsg:
		return m.handleKey(message)
	}
	return m, nil
}

// describeResult turns a mutation result into a status line. Success
// shows the applied notice; expected short-circuits read as
// information, everything else as a failure.
func describeResult(msg mutationResultMsg) (status string, isErr bool) {
	switch {
	case msg.err == nil:
		return msg.applied, false
	case errors.Is(msg.err, actions.ErrDuplicateDate),
		errors.Is(msg.err, actions.ErrDateNotBooked):
		return msg.err.Error(), false
	default:
		return msg.err.Error(), true
	}
}

// setStatus shows a transient notice and schedules its fade.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.status = text
	m.statusErr = isErr
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(statusFadeDelay, func(time.Time) tea.Msg {
		return statusFadeMsg{seq: seq}
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal input takes priority over everything.
	if m.confirm != nil {
		cmd, done := m.confirm.HandleKey(msg, m.keys)
		if done {
			m.confirm = nil
		}
		return m, cmd
	}

	if m.entering {
		return m.handleDateEntry(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.SignOut):
		m.session.SignOut()
		m.recompute()
		return m, nil
	}

	// Dead ends accept sign-out and quit only.
	switch m.state {
	case viewNoSession, viewUnknownRole, viewLoading, viewError, viewViewer:
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows())-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.rows()) - 1
		m.clampCursor()
	default:
		switch m.state {
		case viewAdmin:
			return m.handleAdminKey(msg)
		case viewManager:
			return m.handleManagerKey(msg)
		case viewEngineer:
			return m.handleEngineerKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.CycleRole):
		return m, m.setRoleCmd(target, nextRole(target.Role))
	case key.Matches(msg, m.keys.Delete):
		m.confirm = NewConfirmModal(
			"Delete user",
			fmt.Sprintf("Remove %s from the roster?", target.Name),
			m.deleteUserCmd(target),
		)
	}
	return m, nil
}

func (m Model) handleManagerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	target, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.AssignSR):
		if roster.AtThreshold(target) {
			st := roster.SRStatusOf(target)
			m.confirm = NewConfirmModal(
				"Threshold reached",
				fmt.Sprintf("%s is at %d/%d. Assign anyway?", target.Name, st.Current, st.Threshold),
				m.assignCmd(target, true),
			)
			return m, nil
		}
		return m, m.assignCmd(target, false)
	case key.Matches(msg, m.keys.ResetSR):
		m.confirm = NewConfirmModal(
			"Reset SR counter",
			fmt.Sprintf("Reset %s's SR count to zero?", target.Name),
			m.resetCmd(target),
		)
	case key.Matches(msg, m.keys.AddVacation):
		m.openDateEntry(target, false)
	case key.Matches(msg, m.keys.RemoveVacation):
		m.openDateEntry(target, true)
	}
	return m, nil
}

func (m Model) handleEngineerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	self, ok := m.session.CurrentUser()
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.AddVacation):
		m.openDateEntry(self, false)
	case key.Matches(msg, m.keys.RemoveVacation):
		m.openDateEntry(self, true)
	}
	return m, nil
}

func (m *Model) openDateEntry(target roster.User, removing bool) {
	m.entering = true
	m.removing = removing
	m.dateTarget = target
	m.dateInput.SetValue("")
	m.dateInput.Focus()
}

func (m Model) handleDateEntry(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		date := m.dateInput.Value()
		target, removing := m.dateTarget, m.removing
		m.entering = false
		m.dateInput.Blur()
		if fresh, ok := roster.FindUser(m.users, target.ID); ok {
			target = fresh
		}

		// Booking a date that is already booked is information, not a
		// confirmable action.
		if !removing && slices.Contains(target.VacationDates, date) {
			return m, m.setStatus(fmt.Sprintf("%s already has %s booked", target.Name, date), false)
		}

		if removing {
			m.confirm = NewConfirmModal(
				"Unbook vacation",
				fmt.Sprintf("Remove %s from %s's vacation dates?", date, target.Name),
				m.removeVacationCmd(target, date),
			)
		} else {
			m.confirm = NewConfirmModal(
				"Book vacation",
				fmt.Sprintf("Book %s as a vacation date for %s?", date, target.Name),
				m.addVacationCmd(target, date),
			)
		}
		return m, nil
	case tea.KeyEsc:
		m.entering = false
		m.dateInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// nextRole cycles through the role enumeration in rank order.
func nextRole(r roster.Role) roster.Role {
	for i, candidate := range roster.Roles {
		if candidate == r {
			return roster.Roles[(i+1)%len(roster.Roles)]
		}
	}
	return roster.RoleViewer
}

// Mutation commands. Each issues one store write off the UI goroutine
// and reports completion; the snapshot listener paints the result.

func (m Model) assignCmd(u roster.User, force bool) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.AssignSR(ctx, u, force),
			applied: fmt.Sprintf("Assigned SR to %s", u.Name),
		}
	}
}

func (m Model) resetCmd(u roster.User) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.ResetSR(ctx, u),
			applied: fmt.Sprintf("Reset %s's SR counter", u.Name),
		}
	}
}

func (m Model) addVacationCmd(u roster.User, date string) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.AddVacation(ctx, u, date),
			applied: fmt.Sprintf("Booked %s for %s", date, u.Name),
		}
	}
}

func (m Model) removeVacationCmd(u roster.User, date string) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.RemoveVacation(ctx, u, date),
			applied: fmt.Sprintf("Removed %s from %s's vacation", date, u.Name),
		}
	}
}

func (m Model) setRoleCmd(u roster.User, role roster.Role) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.SetRole(ctx, u.ID, role),
			applied: fmt.Sprintf("Set %s's role to %s", u.Name, role),
		}
	}
}

func (m Model) deleteUserCmd(u roster.User) tea.Cmd {
	act := m.actions
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		return mutationResultMsg{
			err:     act.DeleteUser(ctx, u.ID),
			applied: fmt.Sprintf("Removed %s from the roster", u.Name),
		}
	}
}
