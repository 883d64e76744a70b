package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityMessage is one activity event published by the API service
type ActivityMessage struct {
	EventID     string          `json:"event_id"`
	UserID      string          `json:"user_id"`
	ModuleName  string          `json:"module_name"`
	Action      string          `json:"action"`
	EventSource string          `json:"event_source"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// DecodeActivityMessage parses and validates a delivery body
func DecodeActivityMessage(body []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if _, err := uuid.Parse(msg.EventID); err != nil {
		return nil, fmt.Errorf("%w: event_id %q is not a UUID", ErrInvalidMessage, msg.EventID)
	}

	if _, err := uuid.Parse(msg.UserID); err != nil {
		return nil, fmt.Errorf("%w: user_id %q is not a UUID", ErrInvalidMessage, msg.UserID)
	}

	if msg.ModuleName == "" || msg.Action == "" {
		return nil, fmt.Errorf("%w: module_name and action are required", ErrInvalidMessage)
	}

	if msg.EventSource == "" {
		msg.EventSource = "api"
	}

	if len(msg.Metadata) == 0 || string(msg.Metadata) == "null" {
		msg.Metadata = json.RawMessage(`{}`)
	}

	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now().UTC()
	}

	return &msg, nil
}
