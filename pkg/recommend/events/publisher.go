// Package events publishes recommendation domain events to the bus.
package events

import (
	"context"
	"time"

	"yorkie-bakery-be/internal/pkg/logger"
	pkgEvents "yorkie-bakery-be/pkg/events"
)

const (
	TypeTurnCompleted  = "RECOMMENDATION_TURN_COMPLETED"
	TypeSessionsPurged = "CHAT_SESSIONS_PURGED"
)

// EventPublisher is the transport the events are sent through.
type EventPublisher interface {
	Publish(ctx context.Context, event pkgEvents.Event) error
}

// Publisher abstracts event publishing for the recommendation pipeline.
// Publishing is best-effort: failures are logged and never returned.
type Publisher interface {
	PublishTurnCompleted(ctx context.Context, sessionId, agent string, itemIds []string, filters map[string]interface{})
	PublishSessionsPurged(ctx context.Context, count int64)
}

// NatsPublisher implements Publisher on top of a bus publisher. A nil
// transport turns every call into a no-op.
type NatsPublisher struct {
	publisher EventPublisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher EventPublisher, log logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    log,
	}
}

// PublishTurnCompleted emits RECOMMENDATION_TURN_COMPLETED
func (p *NatsPublisher) PublishTurnCompleted(ctx context.Context, sessionId, agent string, itemIds []string, filters map[string]interface{}) {
	p.publish(ctx, pkgEvents.New(TypeTurnCompleted, map[string]interface{}{
		"session_id":  sessionId,
		"agent":       agent,
		"item_ids":    itemIds,
		"filters":     filters,
		"entity_type": "chat_session",
		"entity_id":   sessionId,
	}, time.Now()))
}

// PublishSessionsPurged emits CHAT_SESSIONS_PURGED
func (p *NatsPublisher) PublishSessionsPurged(ctx context.Context, count int64) {
	p.publish(ctx, pkgEvents.New(TypeSessionsPurged, map[string]interface{}{
		"count": count,
	}, time.Now()))
}

func (p *NatsPublisher) publish(ctx context.Context, evt pkgEvents.BaseEvent) {
	if p == nil || p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+evt.Type+" event", map[string]interface{}{"error": err.Error()})
	}
}
