package notify

import "fmt"

// webhookMessage is the Slack incoming-webhook payload.
type webhookMessage struct {
	Channel string         `json:"channel,omitempty"`
	Text    string         `json:"text,omitempty"`
	Blocks  []webhookBlock `json:"blocks,omitempty"`
}

// webhookBlock is a Block Kit block.
type webhookBlock struct {
	Type   string        `json:"type"`
	Text   *webhookText  `json:"text,omitempty"`
	Fields []webhookText `json:"fields,omitempty"`
}

// webhookText is text inside a block.
type webhookText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// eventConfig holds display configuration for each event type.
type eventConfig struct {
	emoji string
	title string
}

var eventConfigs = map[EventType]eventConfig{
	EventSRAssigned:    {emoji: "📨", title: "SR Assigned"},
	EventSRForced:      {emoji: "⚠️", title: "SR Assigned Over Threshold"},
	EventSRReset:       {emoji: "🔄", title: "SR Counter Reset"},
	EventVacationAdded: {emoji: "🏖️", title: "Vacation Booked"},
}

// fieldOrder maps payload keys to their display labels, in render order.
var fieldOrder = []struct {
	key   string
	label string
}{
	{"user", "User"},
	{"count", "Count"},
	{"threshold", "Threshold"},
	{"previous", "Previous"},
	{"date", "Date"},
}

// formatMessage builds the webhook payload for an event.
func formatMessage(event EventType, fields map[string]string) *webhookMessage {
	cfg, ok := eventConfigs[event]
	if !ok {
		cfg = eventConfig{emoji: "📢", title: string(event)}
	}

	header := fmt.Sprintf("%s *%s*", cfg.emoji, cfg.title)

	var fieldBlocks []webhookText
	for _, f := range fieldOrder {
		if v, ok := fields[f.key]; ok && v != "" {
			fieldBlocks = append(fieldBlocks, webhookText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s:*\n%s", f.label, v),
			})
		}
	}

	msg := &webhookMessage{
		Text: fmt.Sprintf("%s %s", cfg.emoji, cfg.title),
		Blocks: []webhookBlock{
			{
				Type: "section",
				Text: &webhookText{Type: "mrkdwn", Text: header},
			},
		},
	}
	if len(fieldBlocks) > 0 {
		msg.Blocks = append(msg.Blocks, webhookBlock{
			Type:   "section",
			Fields: fieldBlocks,
		})
	}
	return msg
}
