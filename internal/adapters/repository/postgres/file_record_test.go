package postgres_test

import (
	"context"
	"csv-drop/internal/adapters/repository/postgres"
	"csv-drop/internal/core/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSqlFileRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := postgres.NewSqlFileRepository(dbConnection)
	parts := postgres.NewSqlPartRepository(dbConnection)

	t.Run("Create - Success", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("sales.csv")

		// Act
		err := repo.Create(ctx, record)

		// Assert
		require.NoError(t, err)
		file, err := repo.FindByID(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.ID, file.ID)
		assert.Equal(t, "sales.csv", file.OriginalName)
		assert.Equal(t, domain.FileStatusUploading, file.Status)
		assert.Nil(t, file.RemoteSessionID)
		assert.Empty(t, file.Parts)
		assert.False(t, file.UploadedAt.IsZero())
	})

	t.Run("Create - Duplicate storage key", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("sales.csv")
		require.NoError(t, repo.Create(ctx, record))
		other := postgres.NewTestRecord("sales.csv")
		other.StorageKey = record.StorageKey

		// Act
		err := repo.Create(ctx, other)

		// Assert
		require.Error(t, err)
	})

	t.Run("FindByID - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		_, err := repo.FindByID(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrFileRecordNotFound)
	})

	t.Run("FindByID - Loads parts in append order", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("parts.csv")
		require.NoError(t, repo.Create(ctx, record))
		_, err := parts.Append(ctx, record.ID, domain.UploadPart{PartNumber: 2, ETag: "b"})
		require.NoError(t, err)
		_, err = parts.Append(ctx, record.ID, domain.UploadPart{PartNumber: 1, ETag: "a"})
		require.NoError(t, err)

		// Act
		file, err := repo.FindByID(ctx, record.ID)

		// Assert
		require.NoError(t, err)
		require.Len(t, file.Parts, 2)
		assert.Equal(t, 2, file.Parts[0].PartNumber)
		assert.Equal(t, 1, file.Parts[1].PartNumber)
	})

	t.Run("SetRemoteSession - Success", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("session.csv")
		require.NoError(t, repo.Create(ctx, record))
		sessionID := "upload-1"

		// Act
		err := repo.SetRemoteSession(ctx, record.ID, &sessionID, 3)

		// Assert
		require.NoError(t, err)
		file, _ := repo.FindByID(ctx, record.ID)
		require.NotNil(t, file.RemoteSessionID)
		assert.Equal(t, "upload-1", *file.RemoteSessionID)
		assert.Equal(t, 3, file.TotalChunks)
		assert.True(t, file.HasOpenSession())
	})

	t.Run("UpdateStatus - Success", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("status.csv")
		require.NoError(t, repo.Create(ctx, record))

		// Act
		err := repo.UpdateStatus(ctx, record.ID, domain.FileStatusCompleted)

		// Assert
		require.NoError(t, err)
		file, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, domain.FileStatusCompleted, file.Status)
	})

	t.Run("UpdateStatus - Terminal record is not changed", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("status.csv")
		require.NoError(t, repo.Create(ctx, record))
		require.NoError(t, repo.UpdateStatus(ctx, record.ID, domain.FileStatusFailed))

		// Act
		err := repo.UpdateStatus(ctx, record.ID, domain.FileStatusCompleted)

		// Assert
		require.ErrorIs(t, err, domain.ErrInvalidState)
		file, _ := repo.FindByID(ctx, record.ID)
		assert.Equal(t, domain.FileStatusFailed, file.Status)
	})

	t.Run("UpdateStatus - Back to uploading is refused", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("status.csv")
		require.NoError(t, repo.Create(ctx, record))

		// Act
		err := repo.UpdateStatus(ctx, record.ID, domain.FileStatusUploading)

		// Assert
		require.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("UpdateStatus - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := repo.UpdateStatus(ctx, uuid.New(), domain.FileStatusCompleted)

		// Assert
		require.ErrorIs(t, err, domain.ErrFileRecordNotFound)
	})

	t.Run("Delete - Removes record and parts", func(t *testing.T) {
		// Arrange
		truncate()
		record := postgres.NewTestRecord("delete.csv")
		require.NoError(t, repo.Create(ctx, record))
		_, err := parts.Append(ctx, record.ID, domain.UploadPart{PartNumber: 1, ETag: "a"})
		require.NoError(t, err)

		// Act
		err = repo.Delete(ctx, record.ID)

		// Assert
		require.NoError(t, err)
		_, err = repo.FindByID(ctx, record.ID)
		require.ErrorIs(t, err, domain.ErrFileRecordNotFound)
		remaining, err := parts.ListByFileID(ctx, record.ID)
		require.NoError(t, err)
		assert.Empty(t, remaining)
	})

	t.Run("Delete - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := repo.Delete(ctx, uuid.New())

		// Assert
		require.ErrorIs(t, err, domain.ErrFileRecordNotFound)
	})

	t.Run("List - Newest first", func(t *testing.T) {
		// Arrange
		truncate()
		older := postgres.NewTestRecord("older.csv")
		newer := postgres.NewTestRecord("newer.csv")
		require.NoError(t, repo.Create(ctx, older))
		time.Sleep(10 * time.Millisecond)
		require.NoError(t, repo.Create(ctx, newer))

		// Act
		records, err := repo.List(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer.ID, records[0].ID)
		assert.Equal(t, older.ID, records[1].ID)
	})

	t.Run("FindStale - Only idle uploads", func(t *testing.T) {
		// Arrange
		truncate()
		idle := postgres.NewTestRecord("idle.csv")
		active := postgres.NewTestRecord("active.csv")
		done := postgres.NewTestRecord("done.csv")
		for _, r := range []domain.FileRecord{idle, active, done} {
			require.NoError(t, repo.Create(ctx, r))
		}
		require.NoError(t, repo.UpdateStatus(ctx, done.ID, domain.FileStatusCompleted))
		past := time.Now().Add(-2 * time.Hour)
		postgres.Backdate(t, dbConnection, idle.ID, past)
		postgres.Backdate(t, dbConnection, done.ID, past)

		// Act
		stale, err := repo.FindStale(ctx, time.Now().Add(-time.Hour))

		// Assert
		require.NoError(t, err)
		require.Len(t, stale, 1)
		assert.Equal(t, idle.ID, stale[0].ID)
	})
}
