package services

import (
	"context"
	"math"

	"github.com/vytor/studyrpg/internal/battle"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/events"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/progression"
	"github.com/vytor/studyrpg/internal/repository"
)

// streakWindow bounds how far back the combo streak is counted. ComboBonus
// saturates well before this.
const streakWindow = 50

// AnswerInput is one submitted answer.
type AnswerInput struct {
	QuestionID     int64   `json:"question_id"`
	SelectedOption string  `json:"selected_option"`
	ResponseTime   float64 `json:"response_time"`
	BattleID       *int64  `json:"battle_id,omitempty"`
}

// AnswerResult reports what an answer earned.
type AnswerResult struct {
	IsCorrect         bool                 `json:"is_correct"`
	CorrectAnswer     string               `json:"correct_answer"`
	Explanation       string               `json:"explanation"`
	XPEarned          int                  `json:"xp_earned"`
	ComboBonus        int                  `json:"combo_bonus"`
	LeveledUp         bool                 `json:"leveled_up"`
	NewLevel          int                  `json:"new_level"`
	NewTotalXP        int                  `json:"new_total_xp"`
	BattleScore       *int                 `json:"battle_score"`
	BattleStatus      *models.BattleStatus `json:"battle_status"`
	CompletedQuestIDs []int64              `json:"completed_quest_ids"`
}

// AnswerService records answers and applies their rewards
type AnswerService interface {
	Submit(ctx context.Context, userID int64, input AnswerInput) (*AnswerResult, error)
}

type answerService struct {
	store  repository.Store
	notify Notifier
	now    Clock
}

// NewAnswerService creates a new AnswerService
func NewAnswerService(store repository.Store, notify Notifier, now Clock) AnswerService {
	return &answerService{store: store, notify: notify, now: now.orDefault()}
}

// Submit grades an answer and applies every consequence in one transaction:
// the response log, battle score, XP with combo bonus, and quest progress.
// Nothing is written when any step fails.
func (s *answerService) Submit(ctx context.Context, userID int64, input AnswerInput) (*AnswerResult, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"user_id":     userID,
		"question_id": input.QuestionID,
	})

	if input.SelectedOption == "" {
		return nil, errors.NewValidationError("selected_option", "is required")
	}
	if input.ResponseTime < 0 || math.IsNaN(input.ResponseTime) || math.IsInf(input.ResponseTime, 0) {
		return nil, errors.NewValidationError("response_time", "must be a non-negative number of seconds")
	}

	var (
		result AnswerResult
		user   *models.User
	)
	now := s.now()

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		var err error
		user, err = loadUser(ctx, tx.Users(), userID, true)
		if err != nil {
			return err
		}

		question, err := tx.Questions().Get(ctx, input.QuestionID)
		if err != nil {
			return err
		}
		if question == nil {
			return errors.NewNotFoundError("question", input.QuestionID)
		}
		if _, err := ownedTopic(ctx, tx.Topics(), userID, question.TopicID); err != nil {
			if errors.IsNotFound(err) {
				return errors.NewNotFoundError("question", input.QuestionID)
			}
			return err
		}

		var ctrl *battle.Controller
		if input.BattleID != nil {
			ctrl, err = s.activeBattle(ctx, tx, userID, *input.BattleID, question.TopicID)
			if err != nil {
				return err
			}
		}

		correct := question.IsCorrect(input.SelectedOption)
		xp, err := progression.CalculateXP(correct, input.ResponseTime, question.Difficulty)
		if err != nil {
			return errors.WrapValidationError("answer", err)
		}

		combo := 0
		if correct {
			recent, err := tx.Responses().Recent(ctx, userID, streakWindow)
			if err != nil {
				return err
			}
			combo = progression.ComboBonus(progression.TrailingStreak(recent) + 1)
		}

		if _, err := tx.Responses().Insert(ctx, models.UserResponse{
			UserID:       userID,
			QuestionID:   question.ID,
			ResponseText: input.SelectedOption,
			IsCorrect:    correct,
			ResponseTime: input.ResponseTime,
			Difficulty:   question.Difficulty,
			CreatedAt:    now,
		}); err != nil {
			return err
		}

		if ctrl != nil {
			if correct {
				if err := ctrl.RecordCorrect(xp); err != nil {
					return err
				}
				if err := tx.Battles().Update(ctx, *ctrl.Battle()); err != nil {
					return err
				}
			}
			b := ctrl.Battle()
			result.BattleScore = &b.Score
			result.BattleStatus = &b.Status
		}

		before := user.Level
		if _, err := progression.AwardXP(user, xp+combo); err != nil {
			return err
		}

		if correct {
			mode := models.QuestTraining
			if ctrl != nil {
				mode = models.QuestBattle
			}
			result.CompletedQuestIDs, err = advanceQuests(ctx, tx, user, mode, 1, now)
			if err != nil {
				return err
			}
		}

		if err := tx.Users().Update(ctx, *user); err != nil {
			return err
		}

		result.IsCorrect = correct
		result.CorrectAnswer = question.Answer
		result.Explanation = question.Explanation
		result.XPEarned = xp
		result.ComboBonus = combo
		result.LeveledUp = user.Level > before
		result.NewLevel = user.Level
		result.NewTotalXP = user.TotalXP
		return nil
	})
	if err != nil {
		if appErr := errors.AsAppError(err); appErr.Code != errors.ErrCodeInternal {
			log.Warn("answer rejected: %v", err)
			return nil, appErr
		}
		log.Error("failed to submit answer: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if result.CompletedQuestIDs == nil {
		result.CompletedQuestIDs = []int64{}
	}

	log.Info("answer recorded: correct=%t, xp=%d, combo=%d, level=%d", result.IsCorrect, result.XPEarned, result.ComboBonus, result.NewLevel)
	s.afterCommit(ctx, *user, input, &result)
	return &result, nil
}

// activeBattle loads a battle the answer may score against.
func (s *answerService) activeBattle(ctx context.Context, tx repository.Store, userID, battleID, topicID int64) (*battle.Controller, error) {
	b, err := tx.Battles().Get(ctx, battleID)
	if err != nil {
		return nil, err
	}
	if b == nil || b.UserID != userID {
		return nil, errors.NewNotFoundError("battle", battleID)
	}
	if b.TopicID != topicID {
		return nil, errors.NewValidationError("question_id", "does not belong to the battle's topic")
	}
	if b.Status.Terminal() {
		return nil, errors.NewConflictError("battle is already resolved", battle.ErrBattleResolved)
	}
	return battle.Wrap(b), nil
}

func (s *answerService) afterCommit(ctx context.Context, user models.User, input AnswerInput, result *AnswerResult) {
	s.notify.userChanged(ctx, user)

	evs := []events.Event{events.New(events.AnswerSubmitted, user.ID, map[string]any{
		"question_id": input.QuestionID,
		"battle_id":   input.BattleID,
		"is_correct":  result.IsCorrect,
		"xp_earned":   result.XPEarned + result.ComboBonus,
	})}
	if result.LeveledUp {
		evs = append(evs, events.New(events.UserLeveledUp, user.ID, map[string]int{"level": result.NewLevel}))
	}
	evs = append(evs, questEvents(user.ID, result.CompletedQuestIDs)...)
	s.notify.publish(ctx, evs...)
}
