package upload_test

import (
	"context"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploadService_Finalize_SortsParts(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()

	p1 := domain.UploadPart{PartNumber: 1, ETag: "etag-1"}
	p2 := domain.UploadPart{PartNumber: 2, ETag: "etag-2"}
	p3 := domain.UploadPart{PartNumber: 3, ETag: "etag-3"}
	rec := withSession(newRecord(domain.FileStatusUploading), "sess-1", 3, p3, p1, p2)

	f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.storage.On("CompleteMultipartSession", mock.Anything, rec.StorageKey, "sess-1", []domain.UploadPart{p1, p2, p3}).Return(nil)
	f.uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
	f.files.On("SetRemoteSession", mock.Anything, rec.ID, (*string)(nil), 3).Return(nil)
	f.parts.On("DeleteByFileID", mock.Anything, rec.ID).Return(nil)
	f.files.On("UpdateStatus", mock.Anything, rec.ID, domain.FileStatusCompleted).Return(nil)

	// Act
	err := f.service.Finalize(ctx, rec.ID)

	// Assert
	require.NoError(t, err)
	f.storage.AssertExpectations(t)
	f.files.AssertExpectations(t)
	f.parts.AssertExpectations(t)
	f.files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUploadService_Finalize_IncompleteParts(t *testing.T) {
	tests := []struct {
		name  string
		parts []domain.UploadPart
	}{
		{name: "missing part", parts: []domain.UploadPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 3, ETag: "c"}}},
		{name: "duplicate part", parts: []domain.UploadPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 1, ETag: "b"}, {PartNumber: 2, ETag: "c"}}},
		{name: "too few parts", parts: []domain.UploadPart{{PartNumber: 1, ETag: "a"}}},
		{name: "empty etag", parts: []domain.UploadPart{{PartNumber: 1, ETag: "a"}, {PartNumber: 2, ETag: ""}, {PartNumber: 3, ETag: "c"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			f := newFixture()
			rec := withSession(newRecord(domain.FileStatusUploading), "sess-1", 3, tt.parts...)
			f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
			f.storage.On("AbortMultipartSession", mock.Anything, rec.StorageKey, "sess-1").Return(nil).Once()
			f.expectAbortCleanup(rec.ID)

			// Act
			err := f.service.Finalize(context.Background(), rec.ID)

			// Assert
			assert.ErrorIs(t, err, domain.ErrIncompletePartSet)
			f.storage.AssertNotCalled(t, "CompleteMultipartSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.storage.AssertExpectations(t)
			f.files.AssertExpectations(t)
		})
	}
}

func TestUploadService_Finalize_RemoteRejectsCompletion(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()

	p1 := domain.UploadPart{PartNumber: 1, ETag: "etag-1"}
	rec := withSession(newRecord(domain.FileStatusUploading), "sess-1", 1, p1)
	tooSmall := fmt.Errorf("%w: EntityTooSmall", domain.ErrIncompletePartSet)

	f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.storage.On("CompleteMultipartSession", mock.Anything, rec.StorageKey, "sess-1", []domain.UploadPart{p1}).Return(tooSmall)
	f.storage.On("AbortMultipartSession", mock.Anything, rec.StorageKey, "sess-1").Return(nil).Once()
	f.expectAbortCleanup(rec.ID)

	// Act
	err := f.service.Finalize(ctx, rec.ID)

	// Assert
	assert.ErrorIs(t, err, domain.ErrIncompletePartSet)
	f.storage.AssertExpectations(t)
	f.files.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "DeleteObject", mock.Anything, mock.Anything)
}

func TestUploadService_Finalize_BookkeepingFails(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()

	p1 := domain.UploadPart{PartNumber: 1, ETag: "etag-1"}
	rec := withSession(newRecord(domain.FileStatusUploading), "sess-1", 1, p1)
	dbErr := errors.New("serialization failure")

	f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.storage.On("CompleteMultipartSession", mock.Anything, rec.StorageKey, "sess-1", []domain.UploadPart{p1}).Return(nil)
	f.uow.On("Execute", mock.Anything, mock.Anything).Return(nil)
	f.files.On("SetRemoteSession", mock.Anything, rec.ID, (*string)(nil), 1).Return(dbErr)
	f.storage.On("DeleteObject", liveCtx(), rec.StorageKey).Return(nil).Once()
	f.storage.On("AbortMultipartSession", mock.Anything, rec.StorageKey, "sess-1").Return(nil).Once()
	f.expectAbortCleanup(rec.ID)

	// Act
	err := f.service.Finalize(ctx, rec.ID)

	// Assert
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
	f.storage.AssertExpectations(t)
	f.files.AssertExpectations(t)
	f.parts.AssertNotCalled(t, "DeleteByFileID", mock.Anything, mock.Anything)
	f.metrics.AssertNotCalled(t, "UploadFinished", domain.UploadOutcomeCompleted)
	f.metrics.AssertCalled(t, "CompensationRan", domain.CompensationDeleteObject, true)
}

func TestUploadService_Finalize_NoSession(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()

	rec := newRecord(domain.FileStatusUploading)
	f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)
	f.expectAbortCleanup(rec.ID)

	// Act
	err := f.service.Finalize(ctx, rec.ID)

	// Assert
	assert.ErrorIs(t, err, domain.ErrSessionMissing)
	f.files.AssertExpectations(t)
	f.storage.AssertNotCalled(t, "AbortMultipartSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadService_Finalize_NotUploading(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newFixture()

	rec := newRecord(domain.FileStatusCompleted)
	f.files.On("FindByID", mock.Anything, rec.ID).Return(rec, nil)

	// Act
	err := f.service.Finalize(ctx, rec.ID)

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.files.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
