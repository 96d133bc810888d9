// Package events publishes domain events after a write has committed.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vytor/studyrpg/internal/logger"
)

// Event types, also used as AMQP routing keys.
const (
	AnswerSubmitted = "answer.submitted"
	UserLeveledUp   = "user.leveled_up"
	QuestCompleted  = "quest.completed"
	BattleResolved  = "battle.resolved"
	DocumentReady   = "document.ready"
	DocumentFailed  = "document.failed"
)

type Event struct {
	Type       string    `json:"type"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// New stamps an event with the current time.
func New(eventType string, userID int64, payload any) Event {
	return Event{Type: eventType, UserID: userID, OccurredAt: time.Now().UTC(), Payload: payload}
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers events. Delivery is best effort: callers log failures
// and carry on.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the request logger. It is used when no
// broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, e Event) error {
	logger.FromContext(ctx).WithPrefix("events").WithFields(map[string]any{
		"type":    e.Type,
		"user_id": e.UserID,
	}).Info("event published: %+v", e.Payload)
	return nil
}

func (LogPublisher) Close() error { return nil }

// PublishAll publishes each event, logging failures instead of returning them.
func PublishAll(ctx context.Context, p Publisher, evs ...Event) {
	if p == nil {
		return
	}
	for _, e := range evs {
		if err := p.Publish(ctx, e); err != nil {
			logger.FromContext(ctx).WithPrefix("events").Warn("failed to publish %s: %v", e.Type, err)
		}
	}
}
