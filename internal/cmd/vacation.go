package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/actions"
	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var vacationCmd = &cobra.Command{
	Use:     "vacation",
	GroupID: GroupOps,
	Short:   "Manage vacation dates",
	Long: `Manage booked vacation dates.

Dates use the YYYY-MM-DD form and stay unique and sorted per user.
Booking a date twice is reported, not treated as a failure.

Examples:
  crewdeck vacation list eve
  crewdeck vacation add eve 2024-07-04
  crewdeck vacation remove eve 2024-07-04`,
	RunE: requireSubcommand,
}

var vacationListCmd = &cobra.Command{
	Use:   "list <user>",
	Short: "Show a user's booked dates",
	Args:  cobra.ExactArgs(1),
	RunE:  runVacationList,
}

var vacationAddCmd = &cobra.Command{
	Use:   "add <user> <date>",
	Short: "Book a vacation date",
	Args:  cobra.ExactArgs(2),
	RunE:  runVacationAdd,
}

var vacationRemoveCmd = &cobra.Command{
	Use:   "remove <user> <date>",
	Short: "Unbook a vacation date",
	Args:  cobra.ExactArgs(2),
	RunE:  runVacationRemove,
}

var vacationYes bool

func init() {
	rootCmd.AddCommand(vacationCmd)
	vacationCmd.AddCommand(vacationListCmd)
	vacationCmd.AddCommand(vacationAddCmd)
	vacationCmd.AddCommand(vacationRemoveCmd)

	vacationAddCmd.Flags().BoolVar(&vacationYes, "yes", false, "Skip the confirmation prompt")
	vacationRemoveCmd.Flags().BoolVar(&vacationYes, "yes", false, "Skip the confirmation prompt")
}

func runVacationList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}
	if len(u.VacationDates) == 0 {
		fmt.Printf("%s has no vacation booked.\n", u.Name)
		return nil
	}
	fmt.Printf("%s:\n", u.Name)
	for _, d := range u.VacationDates {
		fmt.Printf("  %s\n", d)
	}
	return nil
}

func runVacationAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}

	// An already-booked date is informational and never reaches the
	// confirmation prompt.
	for _, d := range u.VacationDates {
		if d == args[1] {
			fmt.Printf("%s %s already has %s booked.\n", style.WarningPrefix, u.Name, args[1])
			return nil
		}
	}
	if !confirmPrompt(fmt.Sprintf("Book %s for %s?", args[1], u.Name), vacationYes) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := a.actions.AddVacation(cmd.Context(), u, args[1]); err != nil {
		return err
	}
	fmt.Printf("%s Booked %s for %s\n", style.SuccessPrefix, args[1], u.Name)
	return nil
}

func runVacationRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}
	if !confirmPrompt(fmt.Sprintf("Unbook %s for %s?", args[1], u.Name), vacationYes) {
		fmt.Println("Aborted.")
		return nil
	}

	err = a.actions.RemoveVacation(cmd.Context(), u, args[1])
	if errors.Is(err, actions.ErrDateNotBooked) {
		fmt.Printf("%s %s does not have %s booked.\n", style.WarningPrefix, u.Name, args[1])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s Unbooked %s for %s\n", style.SuccessPrefix, args[1], u.Name)
	return nil
}
