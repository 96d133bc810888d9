package services

import (
	"context"
	stderrors "errors"

	"github.com/vytor/studyrpg/internal/battle"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/progression"
	"github.com/vytor/studyrpg/internal/repository"
)

// BattleService handles boss battles
type BattleService interface {
	Start(ctx context.Context, userID, topicID int64) (*models.BattleStart, error)
	Get(ctx context.Context, userID, battleID int64) (*models.Battle, error)
	// End resolves the battle as won or lost. It is the only way a battle
	// finishes.
	End(ctx context.Context, userID, battleID int64) (*models.Battle, error)
	List(ctx context.Context, userID int64) ([]models.Battle, error)
}

type battleService struct {
	store         repository.Store
	notify        Notifier
	questionCount int
	now           Clock
}

// NewBattleService creates a new BattleService. questionCount caps the
// questions handed out when a battle starts.
func NewBattleService(store repository.Store, notify Notifier, questionCount int, now Clock) BattleService {
	if questionCount <= 0 {
		questionCount = 5
	}
	return &battleService{store: store, notify: notify, questionCount: questionCount, now: now.orDefault()}
}

func (s *battleService) Start(ctx context.Context, userID, topicID int64) (*models.BattleStart, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": userID, "topic_id": topicID})

	var start models.BattleStart
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		user, err := loadUser(ctx, tx.Users(), userID, true)
		if err != nil {
			return err
		}
		if _, err := ownedTopic(ctx, tx.Topics(), userID, topicID); err != nil {
			return err
		}

		active, err := tx.Battles().Active(ctx, userID, topicID)
		if err != nil {
			return err
		}
		if active != nil {
			return errors.NewConflictError("a battle is already in progress on this topic", nil)
		}

		questions, err := tx.Questions().ListByTopic(ctx, topicID)
		if err != nil {
			return err
		}
		if len(questions) == 0 {
			return errors.NewBadRequestError("topic has no questions yet")
		}

		correct, total, err := tx.Responses().TopicPerformance(ctx, userID, topicID)
		if err != nil {
			return err
		}
		var perf *float64
		if total > 0 {
			p := float64(correct) / float64(total)
			perf = &p
		}
		difficulty := progression.BossDifficulty(user.Level, perf)

		ctrl, err := battle.New(userID, topicID, difficulty, s.now())
		if err != nil {
			return err
		}
		b := ctrl.Battle()
		b.ID, err = tx.Battles().Insert(ctx, *b)
		if err != nil {
			return err
		}

		start.Battle = *b
		start.Questions = byDistance(questions, difficulty, s.questionCount)
		return nil
	})
	if err != nil {
		log.Error("failed to start battle: %v", err)
		return nil, appError(err)
	}

	log.Info("battle started: id=%d, difficulty=%d", start.Battle.ID, start.Battle.Difficulty)
	return &start, nil
}

func (s *battleService) Get(ctx context.Context, userID, battleID int64) (*models.Battle, error) {
	log := logger.FromContext(ctx)

	b, err := s.store.Battles().Get(ctx, battleID)
	if err != nil {
		log.Error("failed to get battle: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if b == nil || b.UserID != userID {
		return nil, errors.NewNotFoundError("battle", battleID)
	}
	return b, nil
}

func (s *battleService) End(ctx context.Context, userID, battleID int64) (*models.Battle, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{"user_id": userID, "battle_id": battleID})

	var resolved *models.Battle
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		b, err := tx.Battles().Get(ctx, battleID)
		if err != nil {
			return err
		}
		if b == nil || b.UserID != userID {
			return errors.NewNotFoundError("battle", battleID)
		}

		ctrl := battle.Wrap(b)
		if _, err := ctrl.Resolve(s.now()); err != nil {
			if stderrors.Is(err, battle.ErrBattleResolved) {
				return errors.NewConflictError("battle is already resolved", err)
			}
			return err
		}
		resolved = ctrl.Battle()
		return tx.Battles().Update(ctx, *resolved)
	})
	if err != nil {
		log.Error("failed to end battle: %v", err)
		return nil, appError(err)
	}

	log.Info("battle resolved: status=%s, score=%d", resolved.Status, resolved.Score)
	s.notify.publish(ctx, events.New(events.BattleResolved, userID, map[string]any{
		"battle_id": resolved.ID,
		"status":    resolved.Status,
		"score":     resolved.Score,
	}))
	return resolved, nil
}

func (s *battleService) List(ctx context.Context, userID int64) ([]models.Battle, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing battles: user_id=%d", userID)

	battles, err := s.store.Battles().ListByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list battles: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return battles, nil
}
