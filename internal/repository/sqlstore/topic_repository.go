package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var topicColumns = []string{"id", "user_id", "title", "description", "created_at"}

type topicRepository struct {
	s *store
}

func scanTopic(sc scanner, t *models.Topic) error {
	return sc.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.CreatedAt)
}

func (r *topicRepository) Insert(ctx context.Context, t models.Topic) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("inserting topic: user_id=%d, title=%s", t.UserID, t.Title)

	id, err := r.s.insert(ctx, r.s.sb.Insert("topics").
		Columns("user_id", "title", "description", "created_at").
		Values(t.UserID, t.Title, t.Description, t.CreatedAt))
	if err != nil {
		log.Error("failed to insert topic: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *topicRepository) Get(ctx context.Context, id int64) (*models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("getting topic: id=%d", id)

	var t models.Topic
	found, err := r.s.getOne(ctx, log,
		r.s.sb.Select(topicColumns...).From("topics").Where(squirrel.Eq{"id": id}),
		func(sc scanner) error { return scanTopic(sc, &t) })
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func (r *topicRepository) ListByUser(ctx context.Context, userID int64) ([]models.Topic, error) {
	log := logger.FromContext(ctx).WithPrefix("topic_repo")
	log.Debug("listing topics: user_id=%d", userID)

	rows, err := r.s.query(ctx, r.s.sb.Select(topicColumns...).
		From("topics").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("created_at DESC", "id DESC"))
	if err != nil {
		log.Error("failed to list topics: %v", err)
		return nil, err
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := scanTopic(rows, &t); err != nil {
			log.Error("failed to scan topic row: %v", err)
			return nil, err
		}
		topics = append(topics, t)
	}
	log.Debug("found %d topics", len(topics))
	return topics, rows.Err()
}
