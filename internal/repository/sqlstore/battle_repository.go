package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var battleColumns = []string{"id", "user_id", "topic_id", "difficulty", "score", "status", "started_at", "completed_at"}

type battleRepository struct {
	s *store
}

func scanBattle(sc scanner, b *models.Battle) error {
	return sc.Scan(&b.ID, &b.UserID, &b.TopicID, &b.Difficulty, &b.Score, &b.Status, &b.StartedAt, &b.CompletedAt)
}

func (r *battleRepository) Insert(ctx context.Context, b models.Battle) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("battle_repo")
	log.Debug("inserting battle: user_id=%d, topic_id=%d, difficulty=%d", b.UserID, b.TopicID, b.Difficulty)

	id, err := r.s.insert(ctx, r.s.sb.Insert("battles").
		Columns("user_id", "topic_id", "difficulty", "score", "status", "started_at", "completed_at").
		Values(b.UserID, b.TopicID, b.Difficulty, b.Score, string(b.Status), b.StartedAt, b.CompletedAt))
	if err != nil {
		log.Error("failed to insert battle: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *battleRepository) Get(ctx context.Context, id int64) (*models.Battle, error) {
	log := logger.FromContext(ctx).WithPrefix("battle_repo")
	log.Debug("getting battle: id=%d", id)

	var b models.Battle
	found, err := r.s.getOne(ctx, log,
		r.s.sb.Select(battleColumns...).From("battles").Where(squirrel.Eq{"id": id}),
		func(sc scanner) error { return scanBattle(sc, &b) })
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

func (r *battleRepository) Active(ctx context.Context, userID, topicID int64) (*models.Battle, error) {
	log := logger.FromContext(ctx).WithPrefix("battle_repo")
	log.Debug("looking for active battle: user_id=%d, topic_id=%d", userID, topicID)

	var b models.Battle
	found, err := r.s.getOne(ctx, log,
		r.s.sb.Select(battleColumns...).
			From("battles").
			Where(squirrel.Eq{"user_id": userID, "topic_id": topicID, "status": string(models.BattleInProgress)}).
			OrderBy("id DESC").
			Limit(1),
		func(sc scanner) error { return scanBattle(sc, &b) })
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

func (r *battleRepository) Update(ctx context.Context, b models.Battle) error {
	log := logger.FromContext(ctx).WithPrefix("battle_repo")
	log.Debug("updating battle: id=%d, score=%d, status=%s", b.ID, b.Score, b.Status)

	err := expectOne(r.s.exec(ctx, r.s.sb.Update("battles").
		Set("score", b.Score).
		Set("status", string(b.Status)).
		Set("completed_at", b.CompletedAt).
		Where(squirrel.Eq{"id": b.ID})))
	if err != nil {
		log.Error("failed to update battle %d: %v", b.ID, err)
	}
	return err
}

func (r *battleRepository) ListByUser(ctx context.Context, userID int64) ([]models.Battle, error) {
	log := logger.FromContext(ctx).WithPrefix("battle_repo")
	log.Debug("listing battles: user_id=%d", userID)

	rows, err := r.s.query(ctx, r.s.sb.Select(battleColumns...).
		From("battles").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id DESC"))
	if err != nil {
		log.Error("failed to list battles: %v", err)
		return nil, err
	}
	defer rows.Close()

	var battles []models.Battle
	for rows.Next() {
		var b models.Battle
		if err := scanBattle(rows, &b); err != nil {
			log.Error("failed to scan battle row: %v", err)
			return nil, err
		}
		battles = append(battles, b)
	}
	return battles, rows.Err()
}
