// Package cmd implements the crewdeck command line interface.
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/crewdeck/internal/actions"
	"github.com/ksteinfeldt/crewdeck/internal/cache"
	"github.com/ksteinfeldt/crewdeck/internal/config"
	"github.com/ksteinfeldt/crewdeck/internal/notify"
	"github.com/ksteinfeldt/crewdeck/internal/roster"
	"github.com/ksteinfeldt/crewdeck/internal/session"
	"github.com/ksteinfeldt/crewdeck/internal/store"
)

// Command group IDs for help output.
const (
	GroupRoster = "roster"
	GroupOps    = "ops"
)

var rootCmd = &cobra.Command{
	Use:   "crewdeck",
	Short: "Team roster management from the terminal",
	Long: `Crewdeck manages a team roster: users and their roles, skills,
service-request (SR) load, and vacation dates.

The roster lives in a shared document store. Every crewdeck process
sees the same data, and the dashboard updates live as others edit.

Run 'crewdeck dash' for the interactive dashboard, or use the
subcommands for scripting.`,
	SilenceUsage: true,
}

// ephemeral swaps the shared file store for a process-local in-memory
// store. Nothing survives the process; useful for trying crewdeck out.
var ephemeral bool

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupRoster, Title: "Roster Commands:"},
		&cobra.Group{ID: GroupOps, Title: "Operations Commands:"},
	)
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Use an in-memory store (nothing is persisted)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// requireSubcommand is the RunE for parent commands that do nothing
// themselves.
func requireSubcommand(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// app bundles the wired-up layers behind every command: the resolved
// config, the document store, the live caches, the session, and the
// mutation layer.
type app struct {
	cfg        *config.Config
	store      store.Client
	closeStore func()
	paths      store.Paths
	cache      *cache.Roster
	session    *session.Provider
	actions    *actions.Actions
}

// openApp resolves configuration, opens the store, and fills the
// caches from the initial snapshot. Callers must close the app.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var client store.Client
	closeStore := func() {}
	if ephemeral {
		client = store.NewMemStore()
	} else {
		fs := store.NewFileStore(cfg.StoreDir)
		client = fs
		closeStore = fs.Close
	}

	paths := store.PathsFor(cfg.AppID)
	rc, err := cache.Open(client, paths)
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("subscribing to roster: %w", err)
	}

	sess := session.NewProvider(client, paths.Users, []byte(cfg.SessionSecret))
	act := actions.New(client, paths)
	act.SetNotifier(notify.NewClient(&cfg.Notify))

	return &app{
		cfg:        cfg,
		store:      client,
		closeStore: closeStore,
		paths:      paths,
		cache:      rc,
		session:    sess,
		actions:    act,
	}, nil
}

func (a *app) close() {
	a.cache.Close()
	a.closeStore()
}

// signIn establishes a session: a pinned UID wins, then a pre-issued
// token, then anonymous sign-in with local identity detection.
func (a *app) signIn(ctx context.Context) error {
	switch {
	case a.cfg.UID != "":
		return a.session.SignInAs(ctx, a.cfg.UID)
	case a.cfg.SessionToken != "":
		return a.session.SignInWithToken(ctx, a.cfg.SessionToken)
	default:
		return a.session.SignInAnonymously(ctx)
	}
}

// findUser resolves a user argument against the cached roster. Exact
// ID match wins, then case-insensitive unique name match.
func (a *app) findUser(arg string) (roster.User, error) {
	users := a.cache.Users()
	if u, ok := roster.FindUser(users, arg); ok {
		return u, nil
	}

	var matches []roster.User
	for _, u := range users {
		if strings.EqualFold(u.Name, arg) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return roster.User{}, fmt.Errorf("no user matching %q", arg)
	default:
		return roster.User{}, fmt.Errorf("%q matches %d users, use the ID", arg, len(matches))
	}
}

// confirmPrompt asks for interactive confirmation unless assumeYes.
func confirmPrompt(prompt string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}
