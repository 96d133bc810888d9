package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

// TopicService handles topic-related business logic
type TopicService interface {
	Create(ctx context.Context, userID int64, title, description string) (*models.Topic, error)
	List(ctx context.Context, userID int64) ([]models.Topic, error)
	Get(ctx context.Context, userID, topicID int64) (*models.TopicDetail, error)
	Questions(ctx context.Context, userID, topicID int64) ([]models.Question, error)
}

type topicService struct {
	store repository.Store
	now   Clock
}

// NewTopicService creates a new TopicService
func NewTopicService(store repository.Store, now Clock) TopicService {
	return &topicService{store: store, now: now.orDefault()}
}

func (s *topicService) Create(ctx context.Context, userID int64, title, description string) (*models.Topic, error) {
	return createTopic(ctx, s.store, userID, title, description, s.now())
}

func createTopic(ctx context.Context, store repository.Store, userID int64, title, description string, now time.Time) (*models.Topic, error) {
	log := logger.FromContext(ctx)

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.NewValidationError("title", "is required")
	}
	if len(title) > 200 {
		return nil, errors.NewValidationError("title", "must be at most 200 characters")
	}

	topic := models.Topic{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
	id, err := store.Topics().Insert(ctx, topic)
	if err != nil {
		log.Error("failed to create topic: %v", err)
		return nil, errors.NewInternalError(err)
	}
	topic.ID = id

	log.Info("created topic: id=%d, user_id=%d", id, userID)
	return &topic, nil
}

func (s *topicService) List(ctx context.Context, userID int64) ([]models.Topic, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing topics: user_id=%d", userID)

	topics, err := s.store.Topics().ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return topics, nil
}

func (s *topicService) Get(ctx context.Context, userID, topicID int64) (*models.TopicDetail, error) {
	log := logger.FromContext(ctx)

	topic, err := ownedTopic(ctx, s.store.Topics(), userID, topicID)
	if err != nil {
		return nil, err
	}

	docs, err := s.store.Documents().ListByTopic(ctx, topicID)
	if err != nil {
		log.Error("failed to list documents: %v", err)
		return nil, errors.NewInternalError(err)
	}
	count, err := s.store.Questions().CountByTopic(ctx, topicID)
	if err != nil {
		log.Error("failed to count questions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	return &models.TopicDetail{Topic: *topic, Documents: docs, QuestionCount: count}, nil
}

func (s *topicService) Questions(ctx context.Context, userID, topicID int64) ([]models.Question, error) {
	log := logger.FromContext(ctx)

	if _, err := ownedTopic(ctx, s.store.Topics(), userID, topicID); err != nil {
		return nil, err
	}
	questions, err := s.store.Questions().ListByTopic(ctx, topicID)
	if err != nil {
		log.Error("failed to list questions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return questions, nil
}
