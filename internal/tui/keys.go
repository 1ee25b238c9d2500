package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the dashboard.
type KeyMap struct {
	// Navigation.
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Mutations. Which of these are live depends on the active
	// dashboard; bindings for other roles are simply never matched.
	AssignSR       key.Binding
	ResetSR        key.Binding
	AddVacation    key.Binding
	RemoveVacation key.Binding
	CycleRole      key.Binding
	Delete         key.Binding

	// Modal and input handling.
	Confirm key.Binding
	Deny    key.Binding
	Cancel  key.Binding

	SignOut key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	AssignSR: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assign SR"),
	),
	ResetSR: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset SR"),
	),
	AddVacation: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "add vacation"),
	),
	RemoveVacation: key.NewBinding(
		key.WithKeys("V"),
		key.WithHelp("V", "remove vacation"),
	),
	CycleRole: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cycle role"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y", "confirm"),
	),
	Deny: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "deny"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	SignOut: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "sign out"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
