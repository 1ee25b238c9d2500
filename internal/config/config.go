// Package config resolves crewdeck's deployment configuration: the app
// identifier that namespaces the store collections, the store location,
// and the optional pre-issued session credentials. Resolution happens
// once at process start; every knob has a hard-coded fallback.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables overriding the config file.
const (
	EnvConfig        = "CREWDECK_CONFIG"
	EnvAppID         = "CREWDECK_APP_ID"
	EnvStoreDir      = "CREWDECK_STORE_DIR"
	EnvSessionToken  = "CREWDECK_SESSION_TOKEN"
	EnvSessionSecret = "CREWDECK_SESSION_SECRET"
	EnvUID           = "CREWDECK_UID"
)

// DefaultAppID namespaces collections when no deployment id is set.
const DefaultAppID = "default-app"

// Config is the resolved deployment configuration.
type Config struct {
	// AppID namespaces the store collections:
	// artifacts/<AppID>/public/data/...
	AppID string `toml:"app_id"`

	// StoreDir is the document store root directory.
	StoreDir string `toml:"store_dir"`

	// SessionSecret verifies pre-issued session tokens (HS256).
	SessionSecret string `toml:"session_secret,omitempty"`

	// SessionToken is an optional pre-issued session token used at
	// sign-in when present.
	SessionToken string `toml:"session_token,omitempty"`

	// UID pins the operator identity, bypassing token and anonymous
	// sign-in. Useful for shared-machine CLI use.
	UID string `toml:"uid,omitempty"`

	// Notify configures outbound webhook notifications.
	Notify NotifyConfig `toml:"notify"`
}

// NotifyConfig controls Slack-webhook roster notifications.
type NotifyConfig struct {
	// Enabled is the master switch; notifications are opt-in.
	Enabled bool `toml:"enabled"`

	// WebhookURL is the incoming webhook endpoint.
	WebhookURL string `toml:"webhook_url"`

	// Channel optionally overrides the webhook's default channel.
	Channel string `toml:"channel,omitempty"`

	// OnForcedAssign notifies when an SR assignment overrides the
	// threshold gate.
	OnForcedAssign bool `toml:"on_forced_assign"`

	// OnReset notifies when an SR counter is reset.
	OnReset bool `toml:"on_reset"`

	// OnVacation notifies when a vacation date is booked.
	OnVacation bool `toml:"on_vacation"`
}

// Default returns the built-in configuration. The store lives under
// the user's home directory so separate crewdeck processes share it.
func Default() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &Config{
		AppID:    DefaultAppID,
		StoreDir: filepath.Join(home, ".crewdeck", "store"),
		Notify: NotifyConfig{
			Enabled:        false,
			OnForcedAssign: true,
			OnReset:        true,
			OnVacation:     false, // Too noisy by default
		},
	}
}

// Path returns the config file location: $CREWDECK_CONFIG if set,
// otherwise ~/.crewdeck/config.toml.
func Path() string {
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".crewdeck", "config.toml")
	}
	return filepath.Join(home, ".crewdeck", "config.toml")
}

// Load resolves the configuration: defaults, then the config file if
// present, then environment overrides. A missing file is not an error.
func Load() (*Config, error) {
	return load(Path())
}

func load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from user home or env
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if v := os.Getenv(EnvAppID); v != "" {
		cfg.AppID = v
	}
	if v := os.Getenv(EnvStoreDir); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv(EnvSessionToken); v != "" {
		cfg.SessionToken = v
	}
	if v := os.Getenv(EnvSessionSecret); v != "" {
		cfg.SessionSecret = v
	}
	if v := os.Getenv(EnvUID); v != "" {
		cfg.UID = v
	}

	if cfg.AppID == "" {
		cfg.AppID = DefaultAppID
	}
	return cfg, nil
}

// Save writes the configuration to the default location.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.Create(path) //nolint:gosec // G304: path from user home or env
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
