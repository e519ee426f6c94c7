package file_test

import (
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/service/upload"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListFilesV1(t *testing.T) {

	t.Run("nominal", func(t *testing.T) {
		// Arrange
		newest := domain.FileRecord{
			ID:           uuid.New(),
			OriginalName: "b.csv",
			StorageKey:   "1234/1700000001000-b.csv",
			SizeBytes:    20,
			ContentType:  "text/csv",
			Status:       domain.FileStatusUploading,
			UploadedAt:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		}
		older := domain.FileRecord{
			ID:           uuid.New(),
			OriginalName: "a.csv",
			StorageKey:   "1234/1700000000000-a.csv",
			SizeBytes:    10,
			ContentType:  "text/csv",
			Status:       domain.FileStatusCompleted,
			UploadedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		mockService := upload.NewMockUploadService()
		mockService.On("List", mock.Anything).Return([]domain.FileRecord{newest, older}, nil)
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		var response []file.V1FileSummary
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response, 2)
		assert.Equal(t, newest.ID, response[0].ID)
		assert.Equal(t, "b.csv", response[0].OriginalName)
		assert.Equal(t, newest.StorageKey, response[0].Filename)
		assert.Equal(t, domain.FileStatusUploading, response[0].Status)
		assert.Equal(t, older.ID, response[1].ID)
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		// Arrange
		mockService := upload.NewMockUploadService()
		mockService.On("List", mock.Anything).Return([]domain.FileRecord(nil), nil)
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("error - database down", func(t *testing.T) {
		// Arrange
		mockService := upload.NewMockUploadService()
		mockService.On("List", mock.Anything).Return([]domain.FileRecord(nil), errors.New("db down"))
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files", nil))

		// Assert
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetFileLinksV1(t *testing.T) {

	t.Run("nominal", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
		links := &domain.FileLinks{
			DownloadURL: "http://minio:9000/csv-files/1234/a.csv?X-Amz-Signature=abc",
			PreviewURL:  "http://minio:9000/csv-files/1234/a.csv?X-Amz-Signature=abc",
			ExpiresAt:   expiresAt,
		}
		mockService := upload.NewMockUploadService()
		mockService.On("GetLinks", mock.Anything, fileID).Return(links, nil)
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID.String(), nil))

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		var response file.V1GetFileLinksResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, links.DownloadURL, response.DownloadURL)
		assert.Equal(t, links.PreviewURL, response.PreviewURL)
		assert.True(t, expiresAt.Equal(response.ExpiresAt))
	})

	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{name: "error - still uploading", serviceErr: domain.ErrFileNotReady, wantStatus: http.StatusConflict},
		{name: "error - unknown file", serviceErr: domain.ErrFileRecordNotFound, wantStatus: http.StatusNotFound},
		{name: "error - object missing", serviceErr: domain.ErrObjectNotFound, wantStatus: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			fileID := uuid.New()
			mockService := upload.NewMockUploadService()
			mockService.On("GetLinks", mock.Anything, fileID).Return((*domain.FileLinks)(nil), tt.serviceErr)
			h := newRouter(mockService)
			w := httptest.NewRecorder()

			// Act
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/"+fileID.String(), nil))

			// Assert
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}

	t.Run("error - invalid id", func(t *testing.T) {
		// Arrange
		mockService := upload.NewMockUploadService()
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/files/42", nil))

		// Assert
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "GetLinks", mock.Anything, mock.Anything)
	})
}

func TestDeleteFileV1(t *testing.T) {

	t.Run("nominal", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		mockService := upload.NewMockUploadService()
		mockService.On("Delete", mock.Anything, fileID).Return(nil).Once()
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID.String(), nil))

		// Assert
		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
		var response file.V1DeleteFileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response.Success)
	})

	t.Run("error - unknown file", func(t *testing.T) {
		// Arrange
		fileID := uuid.New()
		mockService := upload.NewMockUploadService()
		mockService.On("Delete", mock.Anything, fileID).Return(domain.ErrFileRecordNotFound)
		h := newRouter(mockService)
		w := httptest.NewRecorder()

		// Act
		h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID.String(), nil))

		// Assert
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
