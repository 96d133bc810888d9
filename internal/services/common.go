package services

import (
	"context"
	"time"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

// Clock returns the current time. Services take one so tests can pin it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func (c Clock) orDefault() Clock {
	if c == nil {
		return utcNow
	}
	return c
}

// loadUser fetches a user, locking the row when lock is set and the
// database supports it.
func loadUser(ctx context.Context, users repository.UserRepository, id int64, lock bool) (*models.User, error) {
	log := logger.FromContext(ctx)

	get := users.Get
	if lock {
		get = users.GetForUpdate
	}
	user, err := get(ctx, id)
	if err != nil {
		log.Error("failed to get user %d: %v", id, err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

// ownedTopic fetches a topic and hides topics owned by someone else.
func ownedTopic(ctx context.Context, topics repository.TopicRepository, userID, topicID int64) (*models.Topic, error) {
	log := logger.FromContext(ctx)

	topic, err := topics.Get(ctx, topicID)
	if err != nil {
		log.Error("failed to get topic %d: %v", topicID, err)
		return nil, errors.NewInternalError(err)
	}
	if topic == nil || topic.UserID != userID {
		return nil, errors.NewNotFoundError("topic", topicID)
	}
	return topic, nil
}

// appError passes AppErrors through and wraps anything else as internal.
func appError(err error) error {
	if err == nil {
		return nil
	}
	return errors.AsAppError(err)
}
