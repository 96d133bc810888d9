package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/studyrpg/internal/events"
)

// MockPublisher is a mock implementation of events.Publisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Types returns the event types published so far, in order.
func (m *MockPublisher) Types() []string {
	var types []string
	for _, c := range m.Calls {
		if c.Method == "Publish" {
			types = append(types, c.Arguments.Get(1).(events.Event).Type)
		}
	}
	return types
}
