package cleanup_test

import (
	"context"
	"csv-drop/internal/adapters/repository"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/service/cleanup"
	"csv-drop/internal/core/service/upload"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCleanupService_SweepStaleUploads_NoStaleUploads(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockUploads := upload.NewMockUploadService()
	service := cleanup.NewCleanupService(mockUow, mockUploads, slog.Default())

	cutoff := time.Now().Add(-time.Hour)
	mockUow.GetFileRepoMock().On("FindStale", ctx, cutoff).Return([]domain.FileRecord{}, nil)

	// Act
	err := service.SweepStaleUploads(ctx, cutoff)

	// Assert
	assert.NoError(t, err)
	mockUow.GetFileRepoMock().AssertExpectations(t)
	mockUploads.AssertNotCalled(t, "Abort", mock.Anything, mock.Anything, mock.Anything)
}

func TestCleanupService_SweepStaleUploads_AbortsEachAsExpired(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockUploads := upload.NewMockUploadService()
	service := cleanup.NewCleanupService(mockUow, mockUploads, slog.Default())

	cutoff := time.Now().Add(-time.Hour)
	stale := []domain.FileRecord{
		{ID: uuid.New(), Status: domain.FileStatusUploading},
		{ID: uuid.New(), Status: domain.FileStatusUploading},
	}
	mockUow.GetFileRepoMock().On("FindStale", ctx, cutoff).Return(stale, nil)
	mockUploads.On("Abort", ctx, stale[0].ID, domain.ErrSessionExpired).Return(domain.ErrSessionExpired).Once()
	mockUploads.On("Abort", ctx, stale[1].ID, domain.ErrSessionExpired).Return(domain.ErrSessionExpired).Once()

	// Act
	err := service.SweepStaleUploads(ctx, cutoff)

	// Assert
	assert.NoError(t, err)
	mockUploads.AssertExpectations(t)
}

func TestCleanupService_SweepStaleUploads_FindStaleError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	mockUow := repository.NewMockUnitOfWork()
	mockUploads := upload.NewMockUploadService()
	service := cleanup.NewCleanupService(mockUow, mockUploads, slog.Default())

	cutoff := time.Now()
	expectedError := errors.New("database error")
	mockUow.GetFileRepoMock().On("FindStale", ctx, cutoff).Return([]domain.FileRecord(nil), expectedError)

	// Act
	err := service.SweepStaleUploads(ctx, cutoff)

	// Assert
	assert.Equal(t, expectedError, err)
	mockUploads.AssertNotCalled(t, "Abort", mock.Anything, mock.Anything, mock.Anything)
}

func TestCleanupService_SweepStaleUploads_StopsWhenCancelled(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	mockUow := repository.NewMockUnitOfWork()
	mockUploads := upload.NewMockUploadService()
	service := cleanup.NewCleanupService(mockUow, mockUploads, slog.Default())

	cutoff := time.Now()
	stale := []domain.FileRecord{{ID: uuid.New()}, {ID: uuid.New()}}
	mockUow.GetFileRepoMock().On("FindStale", ctx, cutoff).Return(stale, nil)
	mockUploads.On("Abort", ctx, stale[0].ID, domain.ErrSessionExpired).
		Run(func(args mock.Arguments) { cancel() }).
		Return(domain.ErrSessionExpired).Once()

	// Act
	err := service.SweepStaleUploads(ctx, cutoff)

	// Assert
	assert.ErrorIs(t, err, context.Canceled)
	mockUploads.AssertNumberOfCalls(t, "Abort", 1)
}
