package repository

import (
	"context"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{}
}

func (m *MockFileRepository) Create(ctx context.Context, record domain.FileRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*domain.FileRecord), args.Error(1)
}

func (m *MockFileRepository) List(ctx context.Context) ([]domain.FileRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.FileRecord), args.Error(1)
}

func (m *MockFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFileRepository) SetRemoteSession(ctx context.Context, id uuid.UUID, sessionID *string, totalChunks int) error {
	args := m.Called(ctx, id, sessionID, totalChunks)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) FindStale(ctx context.Context, cutoff time.Time) ([]domain.FileRecord, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]domain.FileRecord), args.Error(1)
}

type MockPartRepository struct {
	mock.Mock
}

func NewMockPartRepository() *MockPartRepository {
	return &MockPartRepository{}
}

func (m *MockPartRepository) Append(ctx context.Context, fileID uuid.UUID, part domain.UploadPart) (int, error) {
	args := m.Called(ctx, fileID, part)
	return args.Int(0), args.Error(1)
}

func (m *MockPartRepository) ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.UploadPart, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).([]domain.UploadPart), args.Error(1)
}

func (m *MockPartRepository) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

type MockUnitOfWork struct {
	mock.Mock
	fileRepo *MockFileRepository
	partRepo *MockPartRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		fileRepo: &MockFileRepository{},
		partRepo: &MockPartRepository{},
	}
}

func (m *MockUnitOfWork) FileRepo() port.FileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) PartRepo() port.PartRepository {
	return m.partRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetFileRepoMock() *MockFileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) GetPartRepoMock() *MockPartRepository {
	return m.partRepo
}
