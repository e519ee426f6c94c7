package metrics

import (
	"csv-drop/internal/core/domain"

	"github.com/stretchr/testify/mock"
)

type MockMetrics struct {
	mock.Mock
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) UploadFinished(outcome domain.UploadOutcome) {
	m.Called(outcome)
}

func (m *MockMetrics) CompensationRan(step domain.CompensationKind, ok bool) {
	m.Called(step, ok)
}
