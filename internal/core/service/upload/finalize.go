package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Finalize completes the remote session once every part is in. A failure aborts the upload.
func (u *uploadService) Finalize(ctx context.Context, id uuid.UUID) error {
	err := u.finalize(ctx, id)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrFileRecordNotFound) || errors.Is(err, domain.ErrInvalidState) {
		return err
	}
	return u.Abort(ctx, id, err)
}

func (u *uploadService) finalize(ctx context.Context, id uuid.UUID) error {
	record, err := u.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return err
	}
	if record.Status != domain.FileStatusUploading {
		return fmt.Errorf("%w: file %s is %s", domain.ErrInvalidState, id, record.Status)
	}
	if !record.HasOpenSession() {
		return fmt.Errorf("%w: nothing to finalize for file %s", domain.ErrSessionMissing, id)
	}

	parts := domain.SortParts(record.Parts)
	if err := domain.ValidatePartSet(parts, record.TotalChunks); err != nil {
		return fmt.Errorf("%w: have %d parts, expected %d", err, len(parts), record.TotalChunks)
	}

	rctx, cancel := u.remoteCtx(ctx)
	err = u.storage.CompleteMultipartSession(rctx, record.StorageKey, *record.RemoteSessionID, parts)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to complete multipart session: %w", err)
	}

	txErr := u.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.FileRepo().SetRemoteSession(ctx, id, nil, record.TotalChunks); err != nil {
			return err
		}
		if err := uow.PartRepo().DeleteByFileID(ctx, id); err != nil {
			return err
		}
		return uow.FileRepo().UpdateStatus(ctx, id, domain.FileStatusCompleted)
	})
	if txErr != nil {
		u.deleteObject(ctx, record, txErr)
		return fmt.Errorf("failed to record completion: %w", txErr)
	}

	u.metrics.UploadFinished(domain.UploadOutcomeCompleted)
	u.logger.Info("upload completed",
		"file_id", id,
		"storage_key", record.StorageKey,
		"parts", len(parts))
	return nil
}
