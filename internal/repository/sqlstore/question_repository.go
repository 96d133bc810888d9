package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

var questionColumns = []string{"id", "topic_id", "document_id", "content", "options", "answer", "explanation", "difficulty", "xp_value", "created_at"}

type questionRepository struct {
	s *store
}

func scanQuestion(sc scanner, q *models.Question) error {
	return sc.Scan(&q.ID, &q.TopicID, &q.DocumentID, &q.Content, &q.Options, &q.Answer, &q.Explanation, &q.Difficulty, &q.XPValue, &q.CreatedAt)
}

func (r *questionRepository) Insert(ctx context.Context, q models.Question) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("inserting question: topic_id=%d, difficulty=%d", q.TopicID, q.Difficulty)

	if err := q.Validate(); err != nil {
		log.Warn("refusing invalid question: %v", err)
		return 0, err
	}
	id, err := r.s.insert(ctx, r.s.sb.Insert("questions").
		Columns("topic_id", "document_id", "content", "options", "answer", "explanation", "difficulty", "xp_value", "created_at").
		Values(q.TopicID, q.DocumentID, q.Content, q.Options, q.Answer, q.Explanation, q.Difficulty, q.XPValue, q.CreatedAt))
	if err != nil {
		log.Error("failed to insert question: %v", err)
		return 0, err
	}
	return id, nil
}

// InsertBatch inserts every question or none.
func (r *questionRepository) InsertBatch(ctx context.Context, qs []models.Question) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("inserting %d questions", len(qs))

	ids := make([]int64, 0, len(qs))
	err := r.s.WithTx(ctx, func(tx repository.Store) error {
		repo := tx.Questions()
		for _, q := range qs {
			id, err := repo.Insert(ctx, q)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert question batch: %v", err)
		return nil, err
	}
	return ids, nil
}

func (r *questionRepository) Get(ctx context.Context, id int64) (*models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("getting question: id=%d", id)

	var q models.Question
	found, err := r.s.getOne(ctx, log,
		r.s.sb.Select(questionColumns...).From("questions").Where(squirrel.Eq{"id": id}),
		func(sc scanner) error { return scanQuestion(sc, &q) })
	if err != nil || !found {
		return nil, err
	}
	return &q, nil
}

func (r *questionRepository) ListByTopic(ctx context.Context, topicID int64) ([]models.Question, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")
	log.Debug("listing questions: topic_id=%d", topicID)

	rows, err := r.s.query(ctx, r.s.sb.Select(questionColumns...).
		From("questions").
		Where(squirrel.Eq{"topic_id": topicID}).
		OrderBy("difficulty ASC", "id ASC"))
	if err != nil {
		log.Error("failed to list questions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var qs []models.Question
	for rows.Next() {
		var q models.Question
		if err := scanQuestion(rows, &q); err != nil {
			log.Error("failed to scan question row: %v", err)
			return nil, err
		}
		qs = append(qs, q)
	}
	log.Debug("found %d questions", len(qs))
	return qs, rows.Err()
}

func (r *questionRepository) CountByTopic(ctx context.Context, topicID int64) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("question_repo")

	row, err := r.s.queryRow(ctx, r.s.sb.Select("COUNT(*)").From("questions").Where(squirrel.Eq{"topic_id": topicID}))
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		log.Error("failed to count questions: %v", err)
		return 0, err
	}
	return n, nil
}
