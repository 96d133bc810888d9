package sqlstore

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/studyrpg/internal/db"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

var userColumns = []string{"id", "username", "email", "level", "total_xp", "created_at"}

type userRepository struct {
	s *store
}

func scanUser(sc scanner, u *models.User) error {
	return sc.Scan(&u.ID, &u.Username, &u.Email, &u.Level, &u.TotalXP, &u.CreatedAt)
}

func (r *userRepository) Insert(ctx context.Context, u models.User) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("inserting user: username=%s", u.Username)

	id, err := r.s.insert(ctx, r.s.sb.Insert("users").
		Columns("username", "email", "level", "total_xp", "created_at").
		Values(u.Username, u.Email, u.Level, u.TotalXP, u.CreatedAt))
	if err != nil {
		log.Error("failed to insert user: %v", err)
		return 0, err
	}
	log.Debug("user inserted: id=%d", id)
	return id, nil
}

func (r *userRepository) Get(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, id, false)
}

func (r *userRepository) GetForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return r.get(ctx, id, true)
}

func (r *userRepository) get(ctx context.Context, id int64, lock bool) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%d, lock=%t", id, lock)

	q := r.s.sb.Select(userColumns...).From("users").Where(squirrel.Eq{"id": id})
	// SQLite has no row locks; its single connection already serialises writers.
	if lock && r.s.db.Dialect == db.Postgres {
		q = q.Suffix("FOR UPDATE")
	}

	var u models.User
	found, err := r.s.getOne(ctx, log, q, func(sc scanner) error { return scanUser(sc, &u) })
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Update(ctx context.Context, u models.User) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating user: id=%d, level=%d, total_xp=%d", u.ID, u.Level, u.TotalXP)

	err := expectOne(r.s.exec(ctx, r.s.sb.Update("users").
		Set("level", u.Level).
		Set("total_xp", u.TotalXP).
		Where(squirrel.Eq{"id": u.ID})))
	if err != nil {
		log.Error("failed to update user %d: %v", u.ID, err)
	}
	return err
}

func (r *userRepository) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("listing top users: limit=%d", limit)

	rows, err := r.s.query(ctx, r.s.sb.Select("id", "username", "total_xp", "level").
		From("users").
		OrderBy("total_xp DESC", "id ASC").
		Limit(uint64(limit)))
	if err != nil {
		log.Error("failed to list top users: %v", err)
		return nil, err
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		e := models.LeaderboardEntry{Rank: len(entries) + 1}
		if err := rows.Scan(&e.UserID, &e.Username, &e.TotalXP, &e.Level); err != nil {
			log.Error("failed to scan leaderboard row: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
