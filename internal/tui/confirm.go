package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModal is a yes/no overlay gating destructive or
// threshold-overriding mutations. While it is open all keyboard input
// routes here; y/enter runs the pending command, n/esc dismisses.
type ConfirmModal struct {
	title  string
	prompt string
	action tea.Cmd
}

// NewConfirmModal creates a modal that runs action when confirmed.
func NewConfirmModal(title, prompt string, action tea.Cmd) *ConfirmModal {
	return &ConfirmModal{title: title, prompt: prompt, action: action}
}

// HandleKey processes a key press. It returns the command to run (nil
// unless confirmed) and whether the modal is done and should close.
func (m *ConfirmModal) HandleKey(msg tea.KeyMsg, keys KeyMap) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Confirm):
		return m.action, true
	case key.Matches(msg, keys.Deny), key.Matches(msg, keys.Cancel):
		return nil, true
	}
	return nil, false
}

var (
	modalBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(1, 2)

	modalTitle = lipgloss.NewStyle().Bold(true)
	modalHint  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// View renders the modal centered in the given area.
func (m *ConfirmModal) View(width, height int) string {
	body := lipgloss.JoinVertical(lipgloss.Left,
		modalTitle.Render(m.title),
		"",
		m.prompt,
		"",
		modalHint.Render("y: confirm   n/esc: cancel"),
	)
	box := modalBorder.Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
