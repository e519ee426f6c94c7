package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"fmt"
	"io"
)

// UploadWhole stores a small file in a single request
func (u *uploadService) UploadWhole(ctx context.Context, fileName string, size int64, contentType string, body io.Reader) (*domain.FileRecord, error) {
	if size > u.cfg.SimpleMaxSize {
		return nil, fmt.Errorf("%w: %d bytes, single upload limit is %d", domain.ErrFileSizeTooBig, size, u.cfg.SimpleMaxSize)
	}

	record, err := u.begin(ctx, fileName, size, contentType)
	if err != nil {
		return nil, err
	}

	if err := u.uploadWhole(ctx, record, body); err != nil {
		return nil, u.Abort(ctx, record.ID, err)
	}

	u.metrics.UploadFinished(domain.UploadOutcomeCompleted)
	u.logger.Info("upload completed", "file_id", record.ID, "storage_key", record.StorageKey)
	return record, nil
}

func (u *uploadService) uploadWhole(ctx context.Context, record *domain.FileRecord, body io.Reader) error {
	sniffed, err := sniffCSV(body)
	if err != nil {
		return err
	}

	rctx, cancel := u.remoteCtx(ctx)
	err = u.storage.PutObject(rctx, record.StorageKey, sniffed, record.SizeBytes, record.ContentType)
	cancel()
	if err != nil {
		u.deleteObject(ctx, record, err)
		return fmt.Errorf("failed to put object: %w", err)
	}

	if err := u.uow.FileRepo().UpdateStatus(ctx, record.ID, domain.FileStatusCompleted); err != nil {
		u.deleteObject(ctx, record, err)
		return fmt.Errorf("failed to mark file completed: %w", err)
	}
	record.Status = domain.FileStatusCompleted
	return nil
}
