package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var questColumns = []string{"id", "user_id", "quest_type", "title", "target", "progress", "reward_xp", "completed", "completed_at", "created_at"}

type questRepository struct {
	s *store
}

func scanQuest(sc scanner, q *models.Quest) error {
	return sc.Scan(&q.ID, &q.UserID, &q.QuestType, &q.Title, &q.Target, &q.Progress, &q.RewardXP, &q.Completed, &q.CompletedAt, &q.CreatedAt)
}

func (r *questRepository) Insert(ctx context.Context, q models.Quest) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("quest_repo")
	log.Debug("inserting quest: user_id=%d, type=%s, title=%s", q.UserID, q.QuestType, q.Title)

	id, err := r.s.insert(ctx, r.s.sb.Insert("quests").
		Columns("user_id", "quest_type", "title", "target", "progress", "reward_xp", "completed", "completed_at", "created_at").
		Values(q.UserID, string(q.QuestType), q.Title, q.Target, q.Progress, q.RewardXP, q.Completed, q.CompletedAt, q.CreatedAt))
	if err != nil {
		log.Error("failed to insert quest: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *questRepository) ListByUser(ctx context.Context, userID int64) ([]models.Quest, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID})
}

func (r *questRepository) ListOpen(ctx context.Context, userID int64, questType models.QuestType) ([]models.Quest, error) {
	return r.list(ctx, squirrel.Eq{"user_id": userID, "quest_type": string(questType), "completed": false})
}

func (r *questRepository) list(ctx context.Context, where squirrel.Eq) ([]models.Quest, error) {
	log := logger.FromContext(ctx).WithPrefix("quest_repo")
	log.Debug("listing quests")

	rows, err := r.s.query(ctx, r.s.sb.Select(questColumns...).
		From("quests").
		Where(where).
		OrderBy("id ASC"))
	if err != nil {
		log.Error("failed to list quests: %v", err)
		return nil, err
	}
	defer rows.Close()

	var quests []models.Quest
	for rows.Next() {
		var q models.Quest
		if err := scanQuest(rows, &q); err != nil {
			log.Error("failed to scan quest row: %v", err)
			return nil, err
		}
		quests = append(quests, q)
	}
	return quests, rows.Err()
}

func (r *questRepository) Update(ctx context.Context, q models.Quest) error {
	log := logger.FromContext(ctx).WithPrefix("quest_repo")
	log.Debug("updating quest: id=%d, progress=%d/%d, completed=%t", q.ID, q.Progress, q.Target, q.Completed)

	err := expectOne(r.s.exec(ctx, r.s.sb.Update("quests").
		Set("progress", q.Progress).
		Set("completed", q.Completed).
		Set("completed_at", q.CompletedAt).
		Where(squirrel.Eq{"id": q.ID})))
	if err != nil {
		log.Error("failed to update quest %d: %v", q.ID, err)
	}
	return err
}
