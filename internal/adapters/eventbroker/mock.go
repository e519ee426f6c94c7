package eventbroker

import (
	"context"
	"csv-drop/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockCompensationQueue struct {
	mock.Mock
}

func NewMockCompensationQueue() *MockCompensationQueue {
	return &MockCompensationQueue{}
}

func (m *MockCompensationQueue) Enqueue(ctx context.Context, task domain.CompensationTask) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}
