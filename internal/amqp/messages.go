package amqp

import (
	"encoding/json"
	"time"

	"moneymate/internal/activity"
)

// ActivityEventMessage is the wire form of an activity entry. The
// publisher sends the full entry so the worker can store it without a
// round trip back to the producer.
type ActivityEventMessage struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	ActivityType string    `json:"activityType"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewActivityEventMessage wraps an entry for publishing.
func NewActivityEventMessage(e activity.Entry) *ActivityEventMessage {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return &ActivityEventMessage{
		ID:           e.ID,
		UserID:       e.UserID,
		ActivityType: e.Type,
		Description:  e.Description,
		CreatedAt:    created,
	}
}

// Entry converts the message back to a store entry.
func (m *ActivityEventMessage) Entry() activity.Entry {
	return activity.Entry{
		ID:          m.ID,
		UserID:      m.UserID,
		Type:        m.ActivityType,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ActivityEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityEventMessageFromJSON parses a message from JSON bytes.
func ActivityEventMessageFromJSON(data []byte) (*ActivityEventMessage, error) {
	var msg ActivityEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
