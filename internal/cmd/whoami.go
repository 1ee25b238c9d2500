package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	GroupID: GroupRoster,
	Short:   "Show the active session identity",
	Long: `Show the identity crewdeck signs in with and the roster profile
it resolves to.

Identity is determined by:
1. CREWDECK_UID (or uid in the config file)
2. CREWDECK_SESSION_TOKEN (or session_token in the config file)
3. Anonymous sign-in with git/OS identity detection`,
	RunE: runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.signIn(cmd.Context()); err != nil {
		return fmt.Errorf("signing in: %w", err)
	}

	uid, _ := a.session.UID()
	u, ok := a.session.CurrentUser()
	if !ok {
		fmt.Println(style.Dim.Render("Signed in, but no profile resolved."))
		return nil
	}

	fmt.Printf("%s %s\n", style.Bold.Render("Signed in as:"), u.Name)
	fmt.Printf("  UID:   %s\n", uid)
	fmt.Printf("  Role:  %s\n", style.ForRole(u.Role).Render(string(u.Role)))
	if u.Email != "" {
		fmt.Printf("  Email: %s\n", u.Email)
	}
	return nil
}
