// Package notify delivers roster events to a Slack incoming webhook.
// Delivery is best-effort: the roster mutation has already committed by
// the time a notification fires, so failures are logged and dropped.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ksteinfeldt/crewdeck/internal/config"
	"github.com/ksteinfeldt/crewdeck/internal/roster"
)

// EventType identifies a roster event.
type EventType string

// Event types for webhook notifications.
const (
	EventSRAssigned    EventType = "sr_assigned"
	EventSRForced      EventType = "sr_forced"
	EventSRReset       EventType = "sr_reset"
	EventVacationAdded EventType = "vacation_added"
)

// Client sends roster notifications via a Slack incoming webhook.
// It implements the actions.Notifier interface.
type Client struct {
	webhookURL string
	channel    string
	enabled    bool
	httpClient *http.Client
	notifyOn   config.NotifyConfig
}

// NewClient creates a webhook client from configuration. A nil or
// disabled config yields a no-op client, safe to use everywhere.
func NewClient(cfg *config.NotifyConfig) *Client {
	if cfg == nil || !cfg.Enabled || cfg.WebhookURL == "" {
		return &Client{enabled: false}
	}

	return &Client{
		webhookURL: cfg.WebhookURL,
		channel:    cfg.Channel,
		enabled:    true,
		notifyOn:   *cfg,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Enabled reports whether the client will actually deliver anything.
func (c *Client) Enabled() bool {
	return c.enabled
}

// SRAssigned fires after a successful SR assignment. Only forced
// assignments are delivered; routine ones are too frequent to be worth
// a channel message.
func (c *Client) SRAssigned(u roster.User, newCount int, forced bool) {
	if !forced {
		return
	}
	c.send(EventSRForced, map[string]string{
		"user":      u.Name,
		"count":     fmt.Sprintf("%d", newCount),
		"threshold": fmt.Sprintf("%d", u.SRThreshold),
	})
}

// SRReset fires after an SR counter reset.
func (c *Client) SRReset(u roster.User) {
	c.send(EventSRReset, map[string]string{
		"user":     u.Name,
		"previous": fmt.Sprintf("%d", u.CurrentSRCount),
	})
}

// VacationAdded fires after a vacation date is booked.
func (c *Client) VacationAdded(u roster.User, date string) {
	c.send(EventVacationAdded, map[string]string{
		"user": u.Name,
		"date": date,
	})
}

// send delivers the event in a goroutine so callers never block on the
// webhook. Errors are logged, not returned.
func (c *Client) send(event EventType, fields map[string]string) {
	if !c.enabled || !c.shouldNotify(event) {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.Post(ctx, event, fields); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
		}
	}()
}

// Post sends a single event to the webhook synchronously. Exposed for
// callers that want the error; most go through the Notifier methods.
func (c *Client) Post(ctx context.Context, event EventType, fields map[string]string) error {
	if !c.enabled {
		return nil
	}

	msg := formatMessage(event, fields)
	if c.channel != "" {
		msg.Channel = c.channel
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// shouldNotify checks the per-event opt-in flags.
func (c *Client) shouldNotify(event EventType) bool {
	switch event {
	case EventSRForced:
		return c.notifyOn.OnForcedAssign
	case EventSRReset:
		return c.notifyOn.OnReset
	case EventVacationAdded:
		return c.notifyOn.OnVacation
	default:
		return true
	}
}
