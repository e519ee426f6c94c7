package upload_test

import (
	"context"
	"csv-drop/internal/adapters/eventbroker"
	"csv-drop/internal/adapters/metrics"
	"csv-drop/internal/adapters/repository"
	"csv-drop/internal/adapters/storage"
	"csv-drop/internal/config"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"csv-drop/internal/core/service/upload"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

var defaultCfg = config.FileUploadConfig{
	TenantID:          "1234",
	SimpleMaxSize:     5 * 1024 * 1024,
	MaxFileSize:       5 * 1024 * 1024 * 1024,
	PartSize:          5 * 1024 * 1024,
	AllowedExtensions: []string{".csv"},
	AllowedMimeTypes:  []string{"text/csv", "text/plain", "application/vnd.ms-excel"},
	RemoteCallTimeout: 5 * time.Second,
	CleanupTimeout:    5 * time.Second,
	SignedURLTTL:      time.Hour,
}

const csvHead = "id,name,score\n1,alice,10\n2,bob,12\n"

// pngHead is the start of a PNG file
var pngHead = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"

type fixture struct {
	uow     *repository.MockUnitOfWork
	files   *repository.MockFileRepository
	parts   *repository.MockPartRepository
	storage *storage.MockStorage
	queue   *eventbroker.MockCompensationQueue
	metrics *metrics.MockMetrics
	service port.UploadService
}

func newFixture() *fixture {
	mockUow := repository.NewMockUnitOfWork()
	mockStorage := storage.NewMockStorage()
	mockQueue := eventbroker.NewMockCompensationQueue()
	mockMetrics := metrics.NewMockMetrics()
	mockMetrics.On("UploadFinished", mock.Anything).Maybe()
	mockMetrics.On("CompensationRan", mock.Anything, mock.Anything).Maybe()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		uow:     mockUow,
		files:   mockUow.GetFileRepoMock(),
		parts:   mockUow.GetPartRepoMock(),
		storage: mockStorage,
		queue:   mockQueue,
		metrics: mockMetrics,
		service: upload.NewUploadService(mockUow, mockStorage, mockQueue, mockMetrics, defaultCfg, logger),
	}
}

func newRecord(status domain.FileStatus) *domain.FileRecord {
	return &domain.FileRecord{
		ID:           uuid.New(),
		TenantID:     "1234",
		OriginalName: "scores.csv",
		SizeBytes:    12 * 1024 * 1024,
		ContentType:  "text/csv",
		StorageKey:   "1234/1700000000000-scores.csv",
		Status:       status,
		UploadedAt:   time.Now(),
		UpdatedAt:    time.Now(),
	}
}

// withSession returns a copy of record with an open session and the given parts
func withSession(record *domain.FileRecord, sessionID string, totalChunks int, parts ...domain.UploadPart) *domain.FileRecord {
	cp := *record
	cp.RemoteSessionID = &sessionID
	cp.TotalChunks = totalChunks
	cp.Parts = parts
	return &cp
}

func body(s string) (io.Reader, int64) {
	return strings.NewReader(s), int64(len(s))
}

func noRecord() *domain.FileRecord {
	return nil
}

func liveCtx() interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil })
}

func taskOf(kind domain.CompensationKind) interface{} {
	return mock.MatchedBy(func(task domain.CompensationTask) bool { return task.Kind == kind })
}

// expectAbortCleanup wires the record teardown steps of an abort
func (f *fixture) expectAbortCleanup(id uuid.UUID) {
	f.files.On("UpdateStatus", mock.Anything, id, domain.FileStatusFailed).Return(nil).Once()
	f.files.On("Delete", mock.Anything, id).Return(nil).Once()
}
