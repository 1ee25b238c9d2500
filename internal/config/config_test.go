package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppID != DefaultAppID {
		t.Errorf("app id = %q, want %q", cfg.AppID, DefaultAppID)
	}
	if cfg.StoreDir == "" {
		t.Error("store dir fallback must be set")
	}
	if cfg.Notify.Enabled {
		t.Error("notifications must be opt-in")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
app_id = "team-a"
store_dir = "/srv/crewdeck"

[notify]
enabled = true
webhook_url = "https://hooks.example.com/x"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppID != "team-a" {
		t.Errorf("app id = %q", cfg.AppID)
	}
	if cfg.StoreDir != "/srv/crewdeck" {
		t.Errorf("store dir = %q", cfg.StoreDir)
	}
	if !cfg.Notify.Enabled || cfg.Notify.WebhookURL != "https://hooks.example.com/x" {
		t.Errorf("notify = %+v", cfg.Notify)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(`app_id = "from-file"`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvAppID, "from-env")
	t.Setenv(EnvUID, "uid-env")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppID != "from-env" {
		t.Errorf("app id = %q, want env override", cfg.AppID)
	}
	if cfg.UID != "uid-env" {
		t.Errorf("uid = %q", cfg.UID)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("app_id = ["), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestConfig_TOMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := &Config{
		AppID:    "team-b",
		StoreDir: "/tmp/store",
		Notify:   NotifyConfig{Enabled: true, OnForcedAssign: true},
	}

	var buf []byte
	buf, err := toml.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var loaded Config
	if err := toml.Unmarshal(buf, &loaded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if loaded.AppID != original.AppID || loaded.Notify.Enabled != original.Notify.Enabled {
		t.Errorf("round trip = %+v", loaded)
	}
}
