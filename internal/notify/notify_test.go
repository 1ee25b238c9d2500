package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ksteinfeldt/crewdeck/internal/config"
	"github.com/ksteinfeldt/crewdeck/internal/roster"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.NotifyConfig
		enabled bool
	}{
		{
			name:    "nil config",
			cfg:     nil,
			enabled: false,
		},
		{
			name: "disabled config",
			cfg: &config.NotifyConfig{
				Enabled:    false,
				WebhookURL: "https://hooks.slack.com/test",
			},
			enabled: false,
		},
		{
			name: "empty webhook",
			cfg: &config.NotifyConfig{
				Enabled:    true,
				WebhookURL: "",
			},
			enabled: false,
		},
		{
			name: "valid config",
			cfg: &config.NotifyConfig{
				Enabled:    true,
				WebhookURL: "https://hooks.slack.com/test",
			},
			enabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(tt.cfg)
			if client.Enabled() != tt.enabled {
				t.Errorf("NewClient().Enabled() = %v, want %v", client.Enabled(), tt.enabled)
			}
		})
	}
}

func TestPost_DeliversPayload(t *testing.T) {
	var got webhookMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(&config.NotifyConfig{
		Enabled:    true,
		WebhookURL: srv.URL,
		Channel:    "#roster",
	})

	err := client.Post(context.Background(), EventSRForced, map[string]string{
		"user":      "Eve",
		"count":     "3",
		"threshold": "2",
	})
	if err != nil {
		t.Fatalf("Post: %v", err)
	}

	if got.Channel != "#roster" {
		t.Errorf("channel = %q", got.Channel)
	}
	if len(got.Blocks) != 2 {
		t.Fatalf("blocks = %d, want 2", len(got.Blocks))
	}
	if !strings.Contains(got.Blocks[0].Text.Text, "Over Threshold") {
		t.Errorf("header = %q", got.Blocks[0].Text.Text)
	}
	if len(got.Blocks[1].Fields) != 3 {
		t.Errorf("fields = %d, want 3", len(got.Blocks[1].Fields))
	}
}

func TestPost_ReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(&config.NotifyConfig{Enabled: true, WebhookURL: srv.URL})
	err := client.Post(context.Background(), EventSRReset, map[string]string{"user": "Eve"})
	if err == nil {
		t.Fatal("expected status error")
	}
}

func TestPost_DisabledClientIsNoOp(t *testing.T) {
	client := NewClient(nil)
	if err := client.Post(context.Background(), EventSRReset, nil); err != nil {
		t.Errorf("disabled Post must be nil, got: %v", err)
	}
}

func TestShouldNotify_HonorsOptIns(t *testing.T) {
	client := NewClient(&config.NotifyConfig{
		Enabled:        true,
		WebhookURL:     "https://hooks.slack.com/test",
		OnForcedAssign: true,
		OnReset:        false,
		OnVacation:     false,
	})

	if !client.shouldNotify(EventSRForced) {
		t.Error("forced assign should notify")
	}
	if client.shouldNotify(EventSRReset) {
		t.Error("reset should be suppressed")
	}
	if client.shouldNotify(EventVacationAdded) {
		t.Error("vacation should be suppressed")
	}
}

func TestSRAssigned_UnforcedIsSilent(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(&config.NotifyConfig{
		Enabled:        true,
		WebhookURL:     srv.URL,
		OnForcedAssign: true,
	})

	// Unforced assignments never reach the webhook, so there is no
	// goroutine to wait for.
	client.SRAssigned(roster.User{Name: "Eve"}, 1, false)
	if hits != 0 {
		t.Errorf("hits = %d, want 0", hits)
	}
}

func TestFormatMessage_UnknownEventFallsBack(t *testing.T) {
	msg := formatMessage(EventType("mystery"), map[string]string{"user": "Eve"})
	if !strings.Contains(msg.Blocks[0].Text.Text, "mystery") {
		t.Errorf("header = %q", msg.Blocks[0].Text.Text)
	}
}
