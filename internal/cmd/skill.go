package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/style"
)

var skillCmd = &cobra.Command{
	Use:     "skill",
	GroupID: GroupRoster,
	Short:   "Manage the skill catalog",
	Long: `Manage the skill catalog.

Skills are referenced from user records by ID. Deleting a skill
leaves those references dangling; listings simply stop showing it.

Examples:
  crewdeck skill list
  crewdeck skill add "incident response"
  crewdeck skill rename go golang
  crewdeck skill remove golang`,
	RunE: requireSubcommand,
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show all skills",
	RunE:  runSkillList,
}

var skillAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a skill to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkillAdd,
}

var skillRenameCmd = &cobra.Command{
	Use:   "rename <skill> <new-name>",
	Short: "Rename a skill",
	Args:  cobra.ExactArgs(2),
	RunE:  runSkillRename,
}

var skillRemoveCmd = &cobra.Command{
	Use:   "remove <skill>",
	Short: "Remove a skill from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkillRemove,
}

var skillYes bool

func init() {
	rootCmd.AddCommand(skillCmd)
	skillCmd.AddCommand(skillListCmd)
	skillCmd.AddCommand(skillAddCmd)
	skillCmd.AddCommand(skillRenameCmd)
	skillCmd.AddCommand(skillRemoveCmd)

	skillRemoveCmd.Flags().BoolVar(&skillYes, "yes", false, "Skip the confirmation prompt")
}

func runSkillList(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	skills := a.cache.Skills()
	if len(skills) == 0 {
		fmt.Println("No skills. Run 'crewdeck skill add <name>' to add one.")
		return nil
	}

	// Count how many users hold each skill.
	holders := map[string]int{}
	for _, u := range a.cache.Users() {
		for _, id := range u.Skills {
			holders[id]++
		}
	}

	for _, s := range skills {
		fmt.Printf("  %-28s %s\n", s.Name,
			style.Dim.Render(fmt.Sprintf("%d users  %s", holders[s.ID], s.ID)))
	}
	return nil
}

func runSkillAdd(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	name := strings.TrimSpace(args[0])
	for _, s := range a.cache.Skills() {
		if strings.EqualFold(s.Name, name) {
			return fmt.Errorf("skill %q already exists", s.Name)
		}
	}

	id, err := a.actions.CreateSkill(cmd.Context(), name)
	if err != nil {
		return err
	}
	fmt.Printf("%s Added skill %q (%s)\n", style.SuccessPrefix, name, id)
	return nil
}

func runSkillRename(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	skill, err := findSkill(a, args[0])
	if err != nil {
		return err
	}
	if err := a.actions.RenameSkill(cmd.Context(), skill.ID, args[1]); err != nil {
		return err
	}
	fmt.Printf("%s Renamed %q to %q\n", style.SuccessPrefix, skill.Name, args[1])
	return nil
}

func runSkillRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	skill, err := findSkill(a, args[0])
	if err != nil {
		return err
	}
	if !confirmPrompt(fmt.Sprintf("Remove skill %q?", skill.Name), skillYes) {
		fmt.Println("Aborted.")
		return nil
	}

	if err := a.actions.DeleteSkill(cmd.Context(), skill.ID); err != nil {
		return err
	}
	fmt.Printf("%s Removed skill %q\n", style.SuccessPrefix, skill.Name)
	return nil
}

// findSkill resolves a skill argument by ID or case-insensitive name.
func findSkill(a *app, arg string) (roster.Skill, error) {
	for _, candidate := range a.cache.Skills() {
		if candidate.ID == arg || strings.EqualFold(candidate.Name, arg) {
			return candidate, nil
		}
	}
	return roster.Skill{}, fmt.Errorf("no skill matching %q", arg)
}
