package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ksteinfeldt/crewdeck/internal/tui"
)

var dashCmd = &cobra.Command{
	Use:     "dash",
	GroupID: GroupOps,
	Short:   "Open the interactive dashboard",
	Long: `Open the interactive roster dashboard.

The dashboard routes on your role: admins see the full roster and the
skill catalog, managers see their reports with SR load and vacation
controls, engineers see their own profile, viewers get a read-only
view. It updates live as others edit the roster.`,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("dash needs a terminal; use the subcommands for scripting")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.signIn(cmd.Context()); err != nil {
		// The dashboard shows the no-session screen; don't abort.
		fmt.Fprintf(os.Stderr, "sign-in failed: %v\n", err)
	}

	model := tui.NewModel(a.cache, a.session, a.actions)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}
