package services

import (
	"context"
	"strings"
	"time"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/progression"
	"github.com/vytor/studyrpg/internal/quest"
	"github.com/vytor/studyrpg/internal/repository"
)

// QuestInput describes a custom quest.
type QuestInput struct {
	QuestType models.QuestType `json:"quest_type"`
	Title     string           `json:"title"`
	Target    int              `json:"target"`
	RewardXP  int              `json:"reward_xp"`
}

// QuestService handles quest-related business logic
type QuestService interface {
	List(ctx context.Context, userID int64) ([]models.Quest, error)
	Create(ctx context.Context, userID int64, input QuestInput) (*models.Quest, error)
	// UpdateQuestProgress advances the user's open quests of one type and
	// returns the ids of quests it completed.
	UpdateQuestProgress(ctx context.Context, userID int64, questType models.QuestType, increment int) ([]int64, error)
}

type questService struct {
	store  repository.Store
	notify Notifier
	now    Clock
}

// NewQuestService creates a new QuestService
func NewQuestService(store repository.Store, notify Notifier, now Clock) QuestService {
	return &questService{store: store, notify: notify, now: now.orDefault()}
}

func (s *questService) List(ctx context.Context, userID int64) ([]models.Quest, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing quests: user_id=%d", userID)

	quests, err := s.store.Quests().ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list quests: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return quests, nil
}

func (s *questService) Create(ctx context.Context, userID int64, input QuestInput) (*models.Quest, error) {
	log := logger.FromContext(ctx)

	q := models.Quest{
		UserID:    userID,
		QuestType: input.QuestType,
		Title:     strings.TrimSpace(input.Title),
		Target:    input.Target,
		RewardXP:  input.RewardXP,
		CreatedAt: s.now(),
	}
	if q.Title == "" {
		return nil, errors.NewValidationError("title", "is required")
	}
	if err := quest.Validate(q); err != nil {
		return nil, errors.WrapValidationError("quest", err)
	}
	if _, err := loadUser(ctx, s.store.Users(), userID, false); err != nil {
		return nil, err
	}

	id, err := s.store.Quests().Insert(ctx, q)
	if err != nil {
		log.Error("failed to create quest: %v", err)
		return nil, errors.NewInternalError(err)
	}
	q.ID = id

	log.Info("created quest: id=%d, user_id=%d, type=%s", id, userID, q.QuestType)
	return &q, nil
}

func (s *questService) UpdateQuestProgress(ctx context.Context, userID int64, questType models.QuestType, increment int) ([]int64, error) {
	log := logger.FromContext(ctx)

	if !questType.Valid() {
		return nil, errors.NewValidationError("quest_type", "must be training or battle")
	}
	if increment < 0 {
		return nil, errors.NewValidationError("increment", "must not be negative")
	}

	var (
		user      *models.User
		completed []int64
		leveledUp bool
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = loadUser(ctx, tx.Users(), userID, true)
		if err != nil {
			return err
		}
		before := user.Level
		completed, err = advanceQuests(ctx, tx, user, questType, increment, s.now())
		if err != nil {
			return err
		}
		leveledUp = user.Level > before
		return tx.Users().Update(ctx, *user)
	})
	if err != nil {
		log.Error("failed to update quest progress: %v", err)
		return nil, appError(err)
	}

	if len(completed) > 0 {
		s.notify.userChanged(ctx, *user)
		evs := questEvents(userID, completed)
		if leveledUp {
			evs = append(evs, events.New(events.UserLeveledUp, userID, map[string]int{"level": user.Level}))
		}
		s.notify.publish(ctx, evs...)
	}
	return completed, nil
}

// advanceQuests moves the user's open quests of questType forward inside tx.
// Rewards are added to user through progression.AwardXP; the caller persists
// the user.
func advanceQuests(ctx context.Context, tx repository.Store, user *models.User, questType models.QuestType, increment int, now time.Time) ([]int64, error) {
	if increment == 0 {
		return nil, nil
	}

	quests, err := tx.Quests().ListOpen(ctx, user.ID, questType)
	if err != nil {
		return nil, err
	}

	reward := func(q models.Quest) error {
		_, err := progression.AwardXP(user, q.RewardXP)
		return err
	}
	completed, err := quest.Advance(quests, increment, reward, now)
	if err != nil {
		return nil, err
	}

	for _, q := range quests {
		if err := tx.Quests().Update(ctx, q); err != nil {
			return nil, err
		}
	}
	if len(completed) > 0 {
		logger.FromContext(ctx).Info("quests completed: user_id=%d, ids=%v", user.ID, completed)
	}
	return completed, nil
}

func questEvents(userID int64, completed []int64) []events.Event {
	evs := make([]events.Event, 0, len(completed))
	for _, id := range completed {
		evs = append(evs, events.New(events.QuestCompleted, userID, map[string]int64{"quest_id": id}))
	}
	return evs
}
