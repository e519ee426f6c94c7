package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// List lists every file record, newest first
func (u *uploadService) List(ctx context.Context) ([]domain.FileRecord, error) {
	records, err := u.uow.FileRepo().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return records, nil
}

// GetLinks signs a read URL for a completed file. Download and preview share it.
func (u *uploadService) GetLinks(ctx context.Context, id uuid.UUID) (*domain.FileLinks, error) {
	record, err := u.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case domain.FileStatusUploading:
		return nil, domain.ErrFileNotReady
	case domain.FileStatusFailed:
		return nil, fmt.Errorf("%w: file %s failed", domain.ErrInvalidState, id)
	}

	rctx, cancel := u.remoteCtx(ctx)
	defer cancel()

	url, expiresAt, err := u.storage.SignedReadURL(rctx, record.StorageKey, u.cfg.SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign read url: %w", err)
	}

	return &domain.FileLinks{
		DownloadURL: url,
		PreviewURL:  url,
		ExpiresAt:   *expiresAt,
	}, nil
}

// Delete removes a file. An upload still in progress is aborted instead.
func (u *uploadService) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := u.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return err
	}

	if record.Status == domain.FileStatusUploading {
		_ = u.Abort(ctx, id, domain.ErrCancelled)
		return nil
	}

	u.deleteObject(ctx, record, nil)

	if err := u.uow.FileRepo().Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrFileRecordNotFound) {
		return fmt.Errorf("failed to delete file record: %w", err)
	}

	u.logger.Info("file deleted", "file_id", id, "storage_key", record.StorageKey)
	return nil
}
