// Package events is the envelope carried on the NATS bus in both
// directions.
package events

import "time"

// Event is a typed payload with the time it happened.
type Event interface {
	// EventType is the upper-case code, e.g. "CHAT_SESSIONS_PURGED".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New builds an event at at. The payload also carries occurred_at so
// consumers reading raw JSON see the same time.
func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	if data == nil {
		data = make(map[string]interface{}, 1)
	}
	data["occurred_at"] = at
	return BaseEvent{Type: eventType, Data: data, OccurredAt: at}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
