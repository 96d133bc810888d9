// Package leaderboard ranks users by total XP.
package leaderboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository"
)

const (
	scoreKey   = "studyrpg:leaderboard:xp"
	profileKey = "studyrpg:leaderboard:user:"
)

// Board records XP totals and lists the top users.
type Board interface {
	Record(ctx context.Context, u models.User) error
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// SQLBoard reads rankings straight from the users table. Record is a no-op
// because the users row is already the source of truth.
type SQLBoard struct {
	users repository.UserRepository
}

func NewSQLBoard(users repository.UserRepository) *SQLBoard {
	return &SQLBoard{users: users}
}

func (b *SQLBoard) Record(context.Context, models.User) error { return nil }

func (b *SQLBoard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return b.users.Top(ctx, limit)
}

// RedisBoard keeps a sorted set of user ids scored by total XP plus a small
// hash per user for display fields.
type RedisBoard struct {
	client *redis.Client
}

func NewRedisBoard(client *redis.Client) *RedisBoard {
	return &RedisBoard{client: client}
}

func (b *RedisBoard) Record(ctx context.Context, u models.User) error {
	member := strconv.FormatInt(u.ID, 10)
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, scoreKey, redis.Z{Score: float64(u.TotalXP), Member: member})
		pipe.HSet(ctx, profileKey+member, "username", u.Username, "level", u.Level)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record leaderboard entry for user %d: %w", u.ID, err)
	}
	return nil
}

func (b *RedisBoard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	results, err := b.client.ZRevRangeWithScores(ctx, scoreKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(results))
	for i, z := range results {
		member, _ := z.Member.(string)
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			logger.FromContext(ctx).WithPrefix("leaderboard").Warn("skipping malformed member %q", member)
			continue
		}
		fields, err := b.client.HGetAll(ctx, profileKey+member).Result()
		if err != nil {
			return nil, fmt.Errorf("read leaderboard profile %d: %w", id, err)
		}
		level, _ := strconv.Atoi(fields["level"])
		entries = append(entries, models.LeaderboardEntry{
			UserID:   id,
			Username: fields["username"],
			TotalXP:  int(z.Score),
			Level:    level,
			Rank:     i + 1,
		})
	}
	return entries, nil
}

// Fallback serves reads from primary and falls back to secondary when
// primary fails or is empty. Writes go to primary only.
type Fallback struct {
	Primary   Board
	Secondary Board
}

func (f Fallback) Record(ctx context.Context, u models.User) error {
	return f.Primary.Record(ctx, u)
}

func (f Fallback) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries, err := f.Primary.Top(ctx, limit)
	if err == nil && len(entries) > 0 {
		return entries, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("leaderboard").Warn("primary leaderboard failed, using fallback: %v", err)
	}
	return f.Secondary.Top(ctx, limit)
}
