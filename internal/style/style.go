// Package style provides consistent terminal styling using Lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
)

var (
	// Success style for positive outcomes
	Success = lipgloss.NewStyle().
		Foreground(lipgloss.Color("10")). // Green
		Bold(true)

	// Warning style for cautionary messages
	Warning = lipgloss.NewStyle().
		Foreground(lipgloss.Color("11")). // Yellow
		Bold(true)

	// Error style for failures
	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")). // Red
		Bold(true)

	// Info style for informational messages
	Info = lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")) // Blue

	// Dim style for secondary information
	Dim = lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")) // Gray

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().
		Bold(true)

	// SuccessPrefix is the checkmark prefix for success messages
	SuccessPrefix = Success.Render("✓")

	// WarningPrefix is the warning prefix
	WarningPrefix = Warning.Render("⚠")

	// ErrorPrefix is the error prefix
	ErrorPrefix = Error.Render("✗")

	// ArrowPrefix for action indicators
	ArrowPrefix = Info.Render("→")
)

// Per-role styles for roster listings and dashboard headers.
var (
	Admin    = lipgloss.NewStyle().Foreground(lipgloss.Color("13")) // Magenta
	Manager  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // Blue
	Engineer = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // Green
	Viewer   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // Gray
)

// ForRole returns the display style for a role. Unknown roles render
// as warnings so they stand out in listings.
func ForRole(r roster.Role) lipgloss.Style {
	switch r {
	case roster.RoleAdmin:
		return Admin
	case roster.RoleManager:
		return Manager
	case roster.RoleEngineer:
		return Engineer
	case roster.RoleViewer:
		return Viewer
	default:
		return Warning
	}
}
