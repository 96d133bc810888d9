package leaderboard_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/studyrpg/internal/leaderboard"
	"github.com/vytor/studyrpg/internal/models"
	"github.com/vytor/studyrpg/internal/repository/sqlstore"
	"github.com/vytor/studyrpg/internal/testutil"
)

type brokenBoard struct{}

func (brokenBoard) Record(context.Context, models.User) error { return errors.New("down") }
func (brokenBoard) Top(context.Context, int) ([]models.LeaderboardEntry, error) {
	return nil, errors.New("down")
}

func TestSQLBoard_FallbackRanksByXP(t *testing.T) {
	ctx := context.Background()
	store := sqlstore.New(testutil.NewTestDB(t))
	low := testutil.SeedUser(t, store, "low")
	high := testutil.SeedUser(t, store, "high")
	high.TotalXP, high.Level = 320, 4
	require.NoError(t, store.Users().Update(ctx, high))
	low.TotalXP = 20
	require.NoError(t, store.Users().Update(ctx, low))

	board := leaderboard.Fallback{Primary: brokenBoard{}, Secondary: leaderboard.NewSQLBoard(store.Users())}

	top, err := board.Top(ctx, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "high", top[0].Username)
	assert.Equal(t, 4, top[0].Level)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "low", top[1].Username)

	assert.Error(t, board.Record(ctx, high))
}

// Runs against a real server when REDIS_ADDR is set.
func TestRedisBoard(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 15})
	defer client.Close()
	require.NoError(t, client.FlushDB(ctx).Err())

	board := leaderboard.NewRedisBoard(client)
	now := time.Now()
	require.NoError(t, board.Record(ctx, models.User{ID: 1, Username: "ana", TotalXP: 90, Level: 1, CreatedAt: now}))
	require.NoError(t, board.Record(ctx, models.User{ID: 2, Username: "bo", TotalXP: 210, Level: 3, CreatedAt: now}))
	require.NoError(t, board.Record(ctx, models.User{ID: 1, Username: "ana", TotalXP: 300, Level: 4, CreatedAt: now}))

	top, err := board.Top(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "ana", top[0].Username)
	assert.Equal(t, 300, top[0].TotalXP)
	assert.Equal(t, 4, top[0].Level)
	assert.Equal(t, int64(2), top[1].UserID)
}
