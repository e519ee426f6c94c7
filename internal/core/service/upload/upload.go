package upload

import (
	"context"
	"csv-drop/internal/config"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"
)

type uploadService struct {
	storage port.ObjectStorage
	uow     port.UnitOfWork
	queue   port.CompensationQueue
	metrics port.Metrics
	cfg     config.FileUploadConfig
	logger  *slog.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(
	uow port.UnitOfWork,
	storage port.ObjectStorage,
	queue port.CompensationQueue,
	metrics port.Metrics,
	cfg config.FileUploadConfig,
	logger *slog.Logger,
) port.UploadService {
	return &uploadService{
		storage: storage,
		uow:     uow,
		queue:   queue,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
	}
}

// remoteCtx bounds a single object store call
func (u *uploadService) remoteCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.cfg.RemoteCallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.cfg.RemoteCallTimeout)
}

// cleanupCtx outlives a cancelled request so compensation still runs
func (u *uploadService) cleanupCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if u.cfg.CleanupTimeout <= 0 {
		return context.WithCancel(detached)
	}
	return context.WithTimeout(detached, u.cfg.CleanupTimeout)
}

// storageKey builds "<tenant>/<unix millis>-<base name>"
func (u *uploadService) storageKey(fileName string) string {
	base := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	return fmt.Sprintf("%s/%d-%s", u.cfg.TenantID, time.Now().UnixMilli(), base)
}

func (u *uploadService) enqueue(ctx context.Context, task domain.CompensationTask) {
	if err := u.queue.Enqueue(ctx, task); err != nil {
		u.logger.Error("failed to enqueue compensation task",
			"kind", task.Kind,
			"file_id", task.FileID,
			"error", err)
	}
}

// abortSession aborts a remote multipart session, queueing a retry on failure
func (u *uploadService) abortSession(ctx context.Context, record *domain.FileRecord, sessionID string, reason error) {
	cctx, cancel := u.cleanupCtx(ctx)
	defer cancel()

	err := u.storage.AbortMultipartSession(cctx, record.StorageKey, sessionID)
	u.metrics.CompensationRan(domain.CompensationAbortSession, err == nil)
	if err != nil {
		u.logger.Error("failed to abort multipart session",
			"file_id", record.ID,
			"session_id", sessionID,
			"error", err)
		u.enqueue(cctx, domain.CompensationTask{
			Kind:            domain.CompensationAbortSession,
			FileID:          record.ID,
			StorageKey:      record.StorageKey,
			RemoteSessionID: sessionID,
			Reason:          reasonText(reason),
		})
	}
}

// deleteObject removes a possibly written object, queueing a retry on failure
func (u *uploadService) deleteObject(ctx context.Context, record *domain.FileRecord, reason error) {
	cctx, cancel := u.cleanupCtx(ctx)
	defer cancel()

	err := u.storage.DeleteObject(cctx, record.StorageKey)
	u.metrics.CompensationRan(domain.CompensationDeleteObject, err == nil)
	if err != nil {
		u.logger.Error("failed to delete object",
			"file_id", record.ID,
			"storage_key", record.StorageKey,
			"error", err)
		u.enqueue(cctx, domain.CompensationTask{
			Kind:       domain.CompensationDeleteObject,
			FileID:     record.ID,
			StorageKey: record.StorageKey,
			Reason:     reasonText(reason),
		})
	}
}

func reasonText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
