package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

// NewMockUploadService creates a new MockUploadService
func NewMockUploadService() *MockUploadService {
	return &MockUploadService{}
}

func (m *MockUploadService) Begin(ctx context.Context, fileName string, size int64, contentType string) (*domain.SessionHandle, error) {
	args := m.Called(ctx, fileName, size, contentType)
	return args.Get(0).(*domain.SessionHandle), args.Error(1)
}

func (m *MockUploadService) SubmitPart(ctx context.Context, id uuid.UUID, partNumber int, totalChunks int, body io.Reader, size int64) (*domain.PartReceipt, error) {
	args := m.Called(ctx, id, partNumber, totalChunks, body, size)
	return args.Get(0).(*domain.PartReceipt), args.Error(1)
}

func (m *MockUploadService) Abort(ctx context.Context, id uuid.UUID, reason error) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockUploadService) Finalize(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUploadService) UploadWhole(ctx context.Context, fileName string, size int64, contentType string, body io.Reader) (*domain.FileRecord, error) {
	args := m.Called(ctx, fileName, size, contentType, body)
	return args.Get(0).(*domain.FileRecord), args.Error(1)
}

func (m *MockUploadService) List(ctx context.Context) ([]domain.FileRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FileRecord), args.Error(1)
}

func (m *MockUploadService) GetLinks(ctx context.Context, id uuid.UUID) (*domain.FileLinks, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.FileLinks), args.Error(1)
}

func (m *MockUploadService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
