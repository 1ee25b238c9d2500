package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: GroupRoster,
	Short:   "Manage users in the roster",
	Long: `Manage users in the crewdeck roster.

Each user has a role (Admin, Manager, Engineer, or Viewer), an
optional manager, a skill list, an SR counter with a threshold, and
booked vacation dates.

Examples:
  crewdeck user list                      # Show the full roster
  crewdeck user show eve                  # Show one user in detail
  crewdeck user add "Eve Ngo" --role Engineer --manager mia
  crewdeck user set eve --threshold 5
  crewdeck user remove eve`,
	RunE: requireSubcommand,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all users grouped by manager",
	RunE:  runUserList,
}

var userShowCmd = &cobra.Command{
	Use:   "show <user>",
	Short: "Show one user's full profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserShow,
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a user to the roster",
	Long: `Add a user to the roster.

The role defaults to Viewer. Manager references accept a user ID or
a unique name.

Examples:
  crewdeck user add "Eve Ngo" --role Engineer --manager mia
  crewdeck user add "Val Ortiz"`,
	Args: cobra.ExactArgs(1),
	RunE: runUserAdd,
}

var userSetCmd = &cobra.Command{
	Use:   "set <user>",
	Short: "Change a user's fields",
	Long: `Change one or more fields on a user record.

Only the flags you pass are written; everything else is untouched.

Examples:
  crewdeck user set eve --role Manager
  crewdeck user set eve --manager "" --threshold 3
  crewdeck user set eve --skills go,incident-response`,
	Args: cobra.ExactArgs(1),
	RunE: runUserSet,
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <user>",
	Short: "Remove a user from the roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRemove,
}

var (
	userRole      string
	userEmail     string
	userManager   string
	userThreshold int
	userHours     string
	userShift     string
	userSkills    []string
	userYes       bool
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userShowCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userSetCmd)
	userCmd.AddCommand(userRemoveCmd)

	for _, c := range []*cobra.Command{userAddCmd, userSetCmd} {
		c.Flags().StringVar(&userRole, "role", "", "Role: Admin, Manager, Engineer, or Viewer")
		c.Flags().StringVar(&userEmail, "email", "", "Email address")
		c.Flags().StringVar(&userManager, "manager", "", "Manager (ID or unique name); empty clears")
		c.Flags().IntVar(&userThreshold, "threshold", -1, "SR threshold")
		c.Flags().StringVar(&userHours, "hours", "", "Working hours, e.g. 9:00-17:00")
		c.Flags().StringVar(&userShift, "shift", "", "Shift pattern")
		c.Flags().StringSliceVar(&userSkills, "skills", nil, "Skill names (comma separated); replaces the list")
	}
	userRemoveCmd.Flags().BoolVar(&userYes, "yes", false, "Skip the confirmation prompt")
}

func runUserList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	users := a.cache.Users()
	if len(users) == 0 {
		fmt.Println("Roster is empty. Run 'crewdeck user add <name>' to add the first user.")
		return nil
	}

	part := roster.PartitionByRole(users)
	for _, mgr := range part.Managers {
		fmt.Println(style.Bold.Render(mgr.Name + "'s team"))
		printUserLine(mgr)
		for _, rep := range roster.ReportsOf(users, mgr.ID) {
			printUserLine(rep)
		}
		fmt.Println()
	}

	if bucket := roster.UnassignedOrAdmins(users); len(bucket) > 0 {
		fmt.Println(style.Bold.Render("Admins & unassigned"))
		for _, u := range bucket {
			printUserLine(u)
		}
	}
	return nil
}

func printUserLine(u roster.User) {
	st := roster.SRStatusOf(u)
	counter := fmt.Sprintf("SR %d/%d", st.Current, st.Threshold)
	if st.Over {
		counter = style.Error.Render(counter)
	}
	fmt.Printf("  %-24s %-10s %s  %s\n",
		u.Name, style.ForRole(u.Role).Render(string(u.Role)), counter,
		style.Dim.Render(u.ID))
}

func runUserShow(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}
	printProfile(a, u)
	return nil
}

func printProfile(a *app, u roster.User) {
	users := a.cache.Users()
	skills := a.cache.Skills()

	fmt.Printf("%s %s\n", style.Bold.Render(u.Name), style.ForRole(u.Role).Render("("+string(u.Role)+")"))
	fmt.Printf("  ID:        %s\n", u.ID)
	if u.Email != "" {
		fmt.Printf("  Email:     %s\n", u.Email)
	}
	fmt.Printf("  Manager:   %s\n", roster.ManagerName(users, u.ManagerID))
	if u.WorkingHours != "" {
		fmt.Printf("  Hours:     %s\n", u.WorkingHours)
	}
	if u.ShiftPattern != "" {
		fmt.Printf("  Shift:     %s\n", u.ShiftPattern)
	}

	st := roster.SRStatusOf(u)
	load := fmt.Sprintf("%d/%d", st.Current, st.Threshold)
	if st.Over {
		load = style.Error.Render(load)
	}
	fmt.Printf("  SR load:   %s\n", load)

	if names := roster.ResolveSkillNames(u.Skills, skills); len(names) > 0 {
		fmt.Printf("  Skills:    %s\n", strings.Join(names, ", "))
	}
	if len(u.VacationDates) > 0 {
		fmt.Printf("  Vacation:  %s\n", strings.Join(u.VacationDates, ", "))
	}

	if reports := roster.ReportsOf(users, u.ID); len(reports) > 0 {
		fmt.Printf("  Reports:\n")
		for _, rep := range reports {
			fmt.Printf("    %s\n", rep.Name)
		}
	}
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u := roster.User{
		Name:         strings.TrimSpace(args[0]),
		Email:        userEmail,
		Role:         roster.RoleViewer,
		WorkingHours: userHours,
		ShiftPattern: userShift,
	}
	if userRole != "" {
		u.Role = roster.Role(userRole)
	}
	if userThreshold >= 0 {
		u.SRThreshold = userThreshold
	}
	if userManager != "" {
		mgr, err := a.findUser(userManager)
		if err != nil {
			return err
		}
		u.ManagerID = mgr.ID
	}
	if len(userSkills) > 0 {
		ids, err := resolveSkillIDs(a, userSkills)
		if err != nil {
			return err
		}
		u.Skills = ids
	}

	id, err := a.actions.CreateUser(cmd.Context(), u)
	if err != nil {
		return err
	}
	fmt.Printf("%s Added %s (%s)\n", style.SuccessPrefix, u.Name, id)
	return nil
}

func runUserSet(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}

	fields := map[string]any{}
	flags := cmd.Flags()
	if flags.Changed("role") {
		role := roster.Role(userRole)
		if !role.Valid() {
			return fmt.Errorf("invalid role %q (want Admin, Manager, Engineer, or Viewer)", userRole)
		}
		fields["role"] = role
	}
	if flags.Changed("email") {
		fields["email"] = userEmail
	}
	if flags.Changed("manager") {
		if userManager == "" {
			fields["manager_id"] = ""
		} else {
			mgr, err := a.findUser(userManager)
			if err != nil {
				return err
			}
			fields["manager_id"] = mgr.ID
		}
	}
	if flags.Changed("threshold") {
		if userThreshold < 0 {
			return fmt.Errorf("threshold must be non-negative")
		}
		fields["sr_threshold"] = userThreshold
	}
	if flags.Changed("hours") {
		fields["working_hours"] = userHours
	}
	if flags.Changed("shift") {
		fields["shift_pattern"] = userShift
	}
	if flags.Changed("skills") {
		ids, err := resolveSkillIDs(a, userSkills)
		if err != nil {
			return err
		}
		fields["skills"] = ids
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to change; pass at least one flag")
	}

	if err := a.actions.UpdateUser(cmd.Context(), u.ID, fields); err != nil {
		return err
	}
	fmt.Printf("%s Updated %s\n", style.SuccessPrefix, u.Name)
	return nil
}

func runUserRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	u, err := a.findUser(args[0])
	if err != nil {
		return err
	}
	if !confirmPrompt(fmt.Sprintf("Remove %s from the roster?", u.Name), userYes) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := a.actions.DeleteUser(cmd.Context(), u.ID); err != nil {
		return err
	}
	fmt.Printf("%s Removed %s\n", style.SuccessPrefix, u.Name)
	return nil
}

// resolveSkillIDs maps skill names to IDs, case-insensitively.
func resolveSkillIDs(a *app, names []string) ([]string, error) {
	skills := a.cache.Skills()
	var ids []string
	for _, name := range names {
		found := false
		for _, s := range skills {
			if strings.EqualFold(s.Name, name) {
				ids = append(ids, s.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown skill %q; run 'crewdeck skill list'", name)
		}
	}
	return ids, nil
}
