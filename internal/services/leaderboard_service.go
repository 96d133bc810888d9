package services

import (
	"context"

	"github.com/vytor/studyrpg/internal/errors"
	"github.com/vytor/studyrpg/internal/leaderboard"
	"github.com/vytor/studyrpg/internal/logger"
	"github.com/vytor/studyrpg/internal/models"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
)

// LeaderboardService ranks users by total XP
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type leaderboardService struct {
	board leaderboard.Board
}

// NewLeaderboardService creates a new LeaderboardService
func NewLeaderboardService(board leaderboard.Board) LeaderboardService {
	return &leaderboardService{board: board}
}

// Top returns at most limit users. A non-positive limit means the default
// and larger limits are capped.
func (s *leaderboardService) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	log := logger.FromContext(ctx)

	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	limit = min(limit, maxLeaderboardLimit)

	entries, err := s.board.Top(ctx, limit)
	if err != nil {
		log.Error("failed to load leaderboard: %v", err)
		return nil, errors.NewUnavailableError("leaderboard", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}
