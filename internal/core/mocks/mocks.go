package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/msclatvia/wellbeing-backend/internal/core/domain"
)

// MockResponseRepository is a mock implementation of ports.ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func NewMockResponseRepository() *MockResponseRepository {
	return &MockResponseRepository{}
}

func (m *MockResponseRepository) Append(ctx context.Context, response *domain.Response) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) LoadAll(ctx context.Context) (domain.RawTable, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.RawTable), args.Error(1)
}

func (m *MockResponseRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}
