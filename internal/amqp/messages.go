package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// RefreshMessage asks a worker to recompute the chart for Source.
// An empty Source means the worker's configured default.
type RefreshMessage struct {
	ID        uuid.UUID `json:"id"`
	Source    string    `json:"source,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRefreshMessage creates a refresh request with a fresh ID.
func NewRefreshMessage(source, reason string) *RefreshMessage {
	return &RefreshMessage{
		ID:        uuid.New(),
		Source:    source,
		Reason:    reason,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshMessageFromJSON decodes a message and rejects one without an ID.
func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == uuid.Nil {
		return nil, errors.New("refresh message has no id")
	}
	return &msg, nil
}
