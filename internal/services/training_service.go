package services

import (
	"context"
	"sort"

	"github.com/vytor/studyrpg/internal/adaptive"
	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

// TrainingService picks practice questions
type TrainingService interface {
	NextQuestion(ctx context.Context, userID, topicID int64) (*models.NextQuestion, error)
}

type trainingService struct {
	store         repository.Store
	historyWindow int
}

// NewTrainingService creates a new TrainingService. historyWindow is the
// number of recent answers on the topic that drive the difficulty.
func NewTrainingService(store repository.Store, historyWindow int) TrainingService {
	if historyWindow <= 0 {
		historyWindow = 10
	}
	return &trainingService{store: store, historyWindow: historyWindow}
}

func (s *trainingService) NextQuestion(ctx context.Context, userID, topicID int64) (*models.NextQuestion, error) {
	log := logger.FromContext(ctx)

	if _, err := ownedTopic(ctx, s.store.Topics(), userID, topicID); err != nil {
		return nil, err
	}

	history, err := s.store.Responses().RecentForTopic(ctx, userID, topicID, s.historyWindow)
	if err != nil {
		log.Error("failed to load response history: %v", err)
		return nil, errors.NewInternalError(err)
	}
	difficulty := adaptive.NextDifficulty(adaptive.FromResponses(history))

	questions, err := s.store.Questions().ListByTopic(ctx, topicID)
	if err != nil {
		log.Error("failed to list questions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(questions) == 0 {
		return nil, errors.NewNotFoundError("questions for topic", topicID)
	}

	q := closestDifficulty(questions, difficulty)
	log.Debug("next question: user_id=%d, topic_id=%d, difficulty=%d, question_id=%d", userID, topicID, difficulty, q.ID)
	return &models.NextQuestion{Question: q, RecommendedDifficulty: difficulty}, nil
}

// closestDifficulty returns the question whose difficulty is nearest to
// target, preferring the lowest id on ties. questions must not be empty.
func closestDifficulty(questions []models.Question, target int) models.Question {
	best := questions[0]
	for _, q := range questions[1:] {
		d, bd := distance(q.Difficulty, target), distance(best.Difficulty, target)
		if d < bd || (d == bd && q.ID < best.ID) {
			best = q
		}
	}
	return best
}

// byDistance orders questions by distance from target, then id, and keeps
// at most limit of them.
func byDistance(questions []models.Question, target, limit int) []models.Question {
	out := make([]models.Question, len(questions))
	copy(out, questions)
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := distance(out[i].Difficulty, target), distance(out[j].Difficulty, target)
		if di != dj {
			return di < dj
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
