package cli_test

import (
	"bytes"
	"context"
	"csv-drop/internal/adapters/handlers/http/chi"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/adapters/metrics"
	"csv-drop/internal/cli"
	"csv-drop/internal/config"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/service/scheduler"
	"csv-drop/internal/core/service/upload"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, service *upload.MockUploadService) string {
	t.Helper()
	discardLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	serverCfg := config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 8 << 20}
	server := httptest.NewServer(chi.NewRouter(discardLogger, file.NewFileHandlerV1(service, discardLogger), metrics.NewHTTPMetrics(reg), reg, nil, serverCfg, "prod"))
	t.Cleanup(server.Close)
	return server.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := cli.Root()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeCSV(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUploadCommand(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	id := uuid.New()
	content := strings.Repeat("id,score\n", scheduler.MinPartSize/9+1)
	lastPart := int64(len(content) - scheduler.MinPartSize)
	path := writeCSV(t, "scores.csv", content)

	service.On("Begin", mock.Anything, "scores.csv", int64(len(content)), "text/csv").Return(&domain.SessionHandle{ID: id}, nil)
	service.On("SubmitPart", mock.Anything, id, 1, 2, mock.Anything, int64(scheduler.MinPartSize)).Return(&domain.PartReceipt{PartsCompleted: 1, TotalChunks: 2}, nil)
	service.On("SubmitPart", mock.Anything, id, 2, 2, mock.Anything, lastPart).Return(&domain.PartReceipt{PartsCompleted: 2, TotalChunks: 2, Completed: true}, nil)

	// Act
	output, err := run(t, "--server", newServer(t, service), "upload", path)

	// Assert
	require.NoError(t, err)
	assert.Contains(t, output, "scores.csv: 1/2 parts (50%)")
	assert.Contains(t, output, "scores.csv: 2/2 parts (100%)")
	assert.Contains(t, output, "scores.csv: completed "+id.String())
	service.AssertExpectations(t)
}

func TestUploadCommand_PartSizeOutOfRange(t *testing.T) {
	tests := []struct {
		name     string
		partSize string
	}{
		{name: "below store minimum", partSize: "18"},
		{name: "above body limit", partSize: "16777216"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			service := upload.NewMockUploadService()
			path := writeCSV(t, "scores.csv", "id,score\n1,10\n")

			// Act
			_, err := run(t, "--server", newServer(t, service), "upload", "--part-size", tt.partSize, path)

			// Assert
			assert.ErrorIs(t, err, domain.ErrValidation)
			service.AssertNotCalled(t, "Begin", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUploadCommand_ReportsFailure(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	path := writeCSV(t, "scores.csv", "a,b\n")
	service.On("Begin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return((*domain.SessionHandle)(nil), domain.ErrFileSizeTooBig)

	// Act
	output, err := run(t, "--server", newServer(t, service), "upload", path)

	// Assert
	assert.Error(t, err)
	assert.Contains(t, output, "scores.csv: failed")
}

func TestUploadCommand_MissingFile(t *testing.T) {
	// Act
	_, err := run(t, "upload", filepath.Join(t.TempDir(), "nope.csv"))

	// Assert
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCommand(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	record := domain.FileRecord{
		ID:           uuid.New(),
		OriginalName: "scores.csv",
		SizeBytes:    42,
		Status:       domain.FileStatusCompleted,
		UploadedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	service.On("List", mock.Anything).Return([]domain.FileRecord{record}, nil)

	// Act
	output, err := run(t, "--server", newServer(t, service), "list")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, output, "NAME")
	assert.Contains(t, output, record.ID.String())
	assert.Contains(t, output, "scores.csv")
	assert.Contains(t, output, "2024-01-01T00:00:00Z")
}

func TestLinksCommand(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	id := uuid.New()
	service.On("GetLinks", mock.Anything, id).Return(&domain.FileLinks{
		DownloadURL: "http://minio/a.csv?sig",
		PreviewURL:  "http://minio/a.csv?sig",
		ExpiresAt:   time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	}, nil)

	// Act
	output, err := run(t, "--server", newServer(t, service), "links", id.String())

	// Assert
	require.NoError(t, err)
	assert.Contains(t, output, "download: http://minio/a.csv?sig")
}

func TestLinksCommand_InvalidID(t *testing.T) {
	// Act
	_, err := run(t, "links", "42")

	// Assert
	assert.Error(t, err)
}

func TestDeleteCommand(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	id := uuid.New()
	service.On("Delete", mock.Anything, id).Return(nil).Once()

	// Act
	output, err := run(t, "--server", newServer(t, service), "rm", id.String())

	// Assert
	require.NoError(t, err)
	assert.Contains(t, output, "deleted "+id.String())
	service.AssertExpectations(t)
}

func TestDeleteCommand_NotFound(t *testing.T) {
	// Arrange
	service := upload.NewMockUploadService()
	service.On("Delete", mock.Anything, mock.Anything).Return(domain.ErrFileRecordNotFound)

	// Act
	_, err := run(t, "--server", newServer(t, service), "delete", uuid.NewString())

	// Assert
	assert.ErrorIs(t, err, domain.ErrFileRecordNotFound)
}
