package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyrpg/internal/questiongen"
)

// MockGenerator is a mock implementation of questiongen.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, content string, n int) (*questiongen.Result, error) {
	args := m.Called(ctx, content, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*questiongen.Result), args.Error(1)
}
