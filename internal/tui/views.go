package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	groupStyle   = lipgloss.NewStyle().Bold(true)
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	overStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusErrSt  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusInfoSt = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return ""
	}

	var body string
	switch m.state {
	case viewLoading:
		body = style.Dim.Render("Loading roster…")
	case viewError:
		body = m.errorView()
	case viewNoSession:
		body = m.deadEndView("No session", "Sign in to see the roster.")
	case viewUnknownRole:
		body = m.unknownRoleView()
	case viewAdmin:
		body = m.adminView()
	case viewManager:
		body = m.managerView()
	case viewEngineer:
		body = m.engineerView()
	case viewViewer:
		body = m.viewerView()
	}

	screen := lipgloss.JoinVertical(lipgloss.Left, m.titleBar(), "", body, "", m.statusBar())

	if m.confirm != nil {
		return m.confirm.View(m.width, m.height)
	}
	return screen
}

func (m Model) titleBar() string {
	title := headerStyle.Render("crewdeck")
	if u, ok := m.session.CurrentUser(); ok {
		who := fmt.Sprintf("%s (%s)", u.Name, u.Role)
		return title + "  " + style.ForRole(u.Role).Render(who)
	}
	return title
}

func (m Model) statusBar() string {
	if m.entering {
		verb := "Book"
		if m.removing {
			verb = "Unbook"
		}
		return fmt.Sprintf("%s vacation for %s: %s", verb, m.dateTarget.Name, m.dateInput.View())
	}
	if m.status != "" {
		if m.statusErr {
			return statusErrSt.Render(style.ErrorPrefix + " " + m.status)
		}
		return statusInfoSt.Render(style.WarningPrefix + " " + m.status)
	}
	return style.Dim.Render(m.helpLine())
}

func (m Model) helpLine() string {
	switch m.state {
	case viewAdmin:
		return "j/k: move   c: cycle role   d: delete   o: sign out   q: quit"
	case viewManager:
		return "j/k: move   a: assign SR   r: reset SR   v/V: vacation   o: sign out   q: quit"
	case viewEngineer:
		return "v: book vacation   V: unbook   o: sign out   q: quit"
	default:
		return "o: sign out   q: quit"
	}
}

func (m Model) errorView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Error.Render("Roster unavailable"),
		"",
		m.loadErr.Error(),
		"",
		style.Dim.Render("The live subscription failed; restart to reconnect."),
	)
}

func (m Model) deadEndView(title, detail string) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		style.Bold.Render(title),
		"",
		detail,
	)
}

func (m Model) unknownRoleView() string {
	u, _ := m.session.CurrentUser()
	return m.deadEndView("Unrecognized role",
		fmt.Sprintf("Your profile carries the role %q, which this dashboard does not know.\nAsk an admin to fix it.", u.Role))
}

// userLine renders one roster row. Selected rows are reversed; rows at
// or past their SR threshold carry a highlighted counter.
func (m Model) userLine(u roster.User, row int) string {
	st := roster.SRStatusOf(u)
	counter := fmt.Sprintf("SR %d/%d", st.Current, st.Threshold)
	if st.Over {
		counter = overStyle.Render(counter)
	}

	line := fmt.Sprintf("  %-20s %-10s %s",
		u.Name, style.ForRole(u.Role).Render(string(u.Role)), counter)
	if len(u.VacationDates) > 0 {
		line += style.Dim.Render(fmt.Sprintf("   away: %s", strings.Join(u.VacationDates, ", ")))
	}
	if row == m.cursor {
		return cursorStyle.Render(line)
	}
	return line
}

// adminView shows the full roster grouped by manager, then the bucket
// of admins and unassigned users, then the skill catalog.
func (m Model) adminView() string {
	var b strings.Builder

	part := roster.PartitionByRole(m.users)
	rowIndex := indexByID(m.users)

	for _, mgr := range part.Managers {
		b.WriteString(groupStyle.Render(mgr.Name+"'s team") + "\n")
		b.WriteString(m.userLine(mgr, rowIndex[mgr.ID]) + "\n")
		for _, rep := range roster.ReportsOf(m.users, mgr.ID) {
			b.WriteString(m.userLine(rep, rowIndex[rep.ID]) + "\n")
		}
		b.WriteString("\n")
	}

	if bucket := roster.UnassignedOrAdmins(m.users); len(bucket) > 0 {
		b.WriteString(groupStyle.Render("Admins & unassigned") + "\n")
		for _, u := range bucket {
			b.WriteString(m.userLine(u, rowIndex[u.ID]) + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(groupStyle.Render("Skills") + "\n")
	if len(m.skills) == 0 {
		b.WriteString(style.Dim.Render("  (none)") + "\n")
	}
	for _, s := range m.skills {
		b.WriteString("  " + s.Name + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// indexByID maps each user ID to its row number in the sorted slice,
// so grouped rendering and cursor selection agree on what is selected.
func indexByID(users []roster.User) map[string]int {
	idx := make(map[string]int, len(users))
	for i, u := range users {
		idx[u.ID] = i
	}
	return idx
}

// managerView lists the manager's direct reports with their SR load.
func (m Model) managerView() string {
	reports := m.rows()
	if len(reports) == 0 {
		return style.Dim.Render("No direct reports.")
	}

	var b strings.Builder
	b.WriteString(groupStyle.Render("Direct reports") + "\n")
	for i, rep := range reports {
		b.WriteString(m.userLine(rep, i) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// engineerView shows the signed-in engineer's own profile.
func (m Model) engineerView() string {
	u, ok := m.session.CurrentUser()
	if !ok {
		return ""
	}
	return m.profileView(u)
}

// viewerView is the read-only profile screen.
func (m Model) viewerView() string {
	u, ok := m.session.CurrentUser()
	if !ok {
		return ""
	}
	return m.profileView(u)
}

func (m Model) profileView(u roster.User) string {
	st := roster.SRStatusOf(u)
	load := fmt.Sprintf("%d/%d", st.Current, st.Threshold)
	if st.Over {
		load = overStyle.Render(load)
	}

	skills := "none"
	if names := roster.ResolveSkillNames(u.Skills, m.skills); len(names) > 0 {
		skills = strings.Join(names, ", ")
	}
	vacations := "none booked"
	if len(u.VacationDates) > 0 {
		vacations = strings.Join(u.VacationDates, ", ")
	}

	rows := []string{
		fmt.Sprintf("%-15s %s", "Email:", orDash(u.Email)),
		fmt.Sprintf("%-15s %s", "Manager:", roster.ManagerName(m.users, u.ManagerID)),
		fmt.Sprintf("%-15s %s", "Hours:", orDash(u.WorkingHours)),
		fmt.Sprintf("%-15s %s", "Shift:", orDash(u.ShiftPattern)),
		fmt.Sprintf("%-15s %s", "SR load:", load),
		fmt.Sprintf("%-15s %s", "Skills:", skills),
		fmt.Sprintf("%-15s %s", "Vacation:", vacations),
	}
	return strings.Join(rows, "\n")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
