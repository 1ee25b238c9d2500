package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/actions"
	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var srCmd = &cobra.Command{
	Use:     "sr",
	GroupID: GroupOps,
	Short:   "Manage service-request counters",
	Long: `Manage service-request (SR) counters.

Each user carries a current SR count and a threshold. Assigning an SR
to a user at or past their threshold is blocked until you confirm;
--force skips the block outright.

Examples:
  crewdeck sr assign eve
  crewdeck sr assign eve --force
  crewdeck sr reset eve --yes`,
	RunE: requireSubcommand,
}

var srAssignCmd = &cobra.Command{
	Use:   "assign <user>",
	Short: "Assign one SR to a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runSRAssign,
}

var srResetCmd = &cobra.Command{
	Use:   "reset <user>",
	Short: "Reset a user's SR counter to zero",
	Args:  cobra.ExactArgs(1),
	RunE:  runSRReset,
}

var (
	srForce bool
	srYes   bool
)

func init() {
	rootCmd.AddCommand(srCmd)
	srCmd.AddCommand(srAssignCmd)
	srCmd.AddCommand(srResetCmd)

	srAssignCmd.Flags().BoolVar(&srForce, "force", false, "Assign even past the threshold, without asking")
	srAssignCmd.Flags().BoolVar(&srYes, "yes", false, "Answer yes to the threshold prompt")
	srResetCmd.Flags().BoolVar(&srYes, "yes", false, "Skip the confirmation prompt")
}

func runSRAssign(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}

	err = a.actions.AssignSR(cmd.Context(), u, srForce)
	if errors.Is(err, actions.ErrThresholdReached) {
		st := roster.SRStatusOf(u)
		fmt.Printf("%s %s is at %d/%d\n", style.WarningPrefix, u.Name, st.Current, st.Threshold)
		if !confirmPrompt("Assign anyway?", srYes) {
			fmt.Println("Aborted.")
			return nil
		}
		err = a.actions.AssignSR(cmd.Context(), u, true)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s Assigned SR to %s (now %d/%d)\n",
		style.SuccessPrefix, u.Name, u.CurrentSRCount+1, u.SRThreshold)
	return nil
}

func runSRReset(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}
	if !confirmPrompt(fmt.Sprintf("Reset %s's SR count (%d) to zero?", u.Name, u.CurrentSRCount), srYes) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := a.actions.ResetSR(cmd.Context(), u); err != nil {
		return err
	}
	fmt.Printf("%s Reset %s's SR counter\n", style.SuccessPrefix, u.Name)
	return nil
}
