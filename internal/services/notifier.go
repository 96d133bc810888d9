package services

import (
	"context"

	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/leaderboard"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

// Notifier carries the side effects that run after a write commits. Both
// fields are optional and failures are only logged.
type Notifier struct {
	Board     leaderboard.Board
	Publisher events.Publisher
}

func (n Notifier) userChanged(ctx context.Context, u models.User) {
	if n.Board == nil {
		return
	}
	if err := n.Board.Record(ctx, u); err != nil {
		logger.FromContext(ctx).Warn("failed to update leaderboard for user %d: %v", u.ID, err)
	}
}

func (n Notifier) publish(ctx context.Context, evs ...events.Event) {
	events.PublishAll(ctx, n.Publisher, evs...)
}
