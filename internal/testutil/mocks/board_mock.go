package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyrpg/internal/models"
)

// MockBoard is a mock implementation of leaderboard.Board
type MockBoard struct {
	mock.Mock
}

func (m *MockBoard) Record(ctx context.Context, u models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockBoard) Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LeaderboardEntry), args.Error(1)
}
