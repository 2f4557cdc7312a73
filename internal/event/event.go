// Package event receives domain events published by other subsystems and
// turns them into notifications.
package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// NotificationEvent is the inbound event asking for a user to be notified,
// e.g. when an application is submitted.
type NotificationEvent struct {
	UserID    int64     `json:"userId"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Timestamp Timestamp `json:"timestamp"`
}

// Sender creates a notification from an event
type Sender interface {
	SendNotification(ctx context.Context, evt NotificationEvent) error
}

// Timestamp is the time the upstream service produced the event. It is
// informational only. Producers may send it with or without an offset;
// offset-less values are read as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON accepts null, RFC 3339 strings and local date-times
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes the timestamp as RFC 3339, or null when unset
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// Decode parses a JSON event payload
func Decode(payload []byte) (NotificationEvent, error) {
	var evt NotificationEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return NotificationEvent{}, fmt.Errorf("decode notification event: %w", err)
	}
	return evt, nil
}
