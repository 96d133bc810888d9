package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var responseColumns = []string{"r.id", "r.user_id", "r.question_id", "r.response_text", "r.is_correct", "r.response_time", "r.difficulty", "r.created_at"}

type responseRepository struct {
	s *store
}

func (r *responseRepository) Insert(ctx context.Context, resp models.UserResponse) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("response_repo")
	log.Debug("recording response: user_id=%d, question_id=%d, correct=%t", resp.UserID, resp.QuestionID, resp.IsCorrect)

	id, err := r.s.insert(ctx, r.s.sb.Insert("user_responses").
		Columns("user_id", "question_id", "response_text", "is_correct", "response_time", "difficulty", "created_at").
		Values(resp.UserID, resp.QuestionID, resp.ResponseText, resp.IsCorrect, resp.ResponseTime, resp.Difficulty, resp.CreatedAt))
	if err != nil {
		log.Error("failed to insert response: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *responseRepository) Recent(ctx context.Context, userID int64, limit int) ([]models.UserResponse, error) {
	return r.recent(ctx, squirrel.Eq{"r.user_id": userID}, limit)
}

func (r *responseRepository) RecentForTopic(ctx context.Context, userID, topicID int64, limit int) ([]models.UserResponse, error) {
	return r.recent(ctx, squirrel.Eq{"r.user_id": userID, "q.topic_id": topicID}, limit)
}

func (r *responseRepository) recent(ctx context.Context, where squirrel.Eq, limit int) ([]models.UserResponse, error) {
	log := logger.FromContext(ctx).WithPrefix("response_repo")
	log.Debug("loading recent responses: limit=%d", limit)

	// Ids grow with insertion order, so they double as the timeline.
	rows, err := r.s.query(ctx, r.s.sb.Select(responseColumns...).
		From("user_responses r").
		Join("questions q ON q.id = r.question_id").
		Where(where).
		OrderBy("r.id DESC").
		Limit(uint64(limit)))
	if err != nil {
		log.Error("failed to load recent responses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.UserResponse
	for rows.Next() {
		var u models.UserResponse
		if err := rows.Scan(&u.ID, &u.UserID, &u.QuestionID, &u.ResponseText, &u.IsCorrect, &u.ResponseTime, &u.Difficulty, &u.CreatedAt); err != nil {
			log.Error("failed to scan response row: %v", err)
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func (r *responseRepository) TopicPerformance(ctx context.Context, userID, topicID int64) (int, int, error) {
	log := logger.FromContext(ctx).WithPrefix("response_repo")
	log.Debug("computing topic performance: user_id=%d, topic_id=%d", userID, topicID)

	row, err := r.s.queryRow(ctx, r.s.sb.Select(
		"COALESCE(SUM(CASE WHEN r.is_correct THEN 1 ELSE 0 END), 0)",
		"COUNT(*)",
	).
		From("user_responses r").
		Join("questions q ON q.id = r.question_id").
		Where(squirrel.Eq{"r.user_id": userID, "q.topic_id": topicID}))
	if err != nil {
		return 0, 0, err
	}
	var correct, total int
	if err := row.Scan(&correct, &total); err != nil {
		log.Error("failed to compute topic performance: %v", err)
		return 0, 0, err
	}
	return correct, total, nil
}
