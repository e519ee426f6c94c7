package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// SubmitPart uploads one chunk. The last part finalizes the upload in the same call.
// Any failure aborts the upload and is returned with its taxonomy error.
func (u *uploadService) SubmitPart(ctx context.Context, id uuid.UUID, partNumber int, totalChunks int, body io.Reader, size int64) (*domain.PartReceipt, error) {
	record, err := u.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFileRecordNotFound) {
			return nil, err
		}
		return nil, u.Abort(ctx, id, err)
	}

	if record.Status != domain.FileStatusUploading {
		return nil, fmt.Errorf("%w: file %s is %s", domain.ErrInvalidState, id, record.Status)
	}

	receipt, err := u.submitPart(ctx, record, partNumber, totalChunks, body, size)
	if err != nil {
		return nil, u.Abort(ctx, id, err)
	}
	return receipt, nil
}

func (u *uploadService) submitPart(ctx context.Context, record *domain.FileRecord, partNumber int, totalChunks int, body io.Reader, size int64) (*domain.PartReceipt, error) {
	if totalChunks < 1 || totalChunks > maxParts || partNumber < 1 || partNumber > totalChunks {
		return nil, fmt.Errorf("%w: part %d of %d", domain.ErrInvalidPartNumber, partNumber, totalChunks)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: part %d", domain.ErrEmptyPart, partNumber)
	}

	if record.HasOpenSession() && record.TotalChunks != totalChunks {
		return nil, fmt.Errorf("%w: got %d, started with %d", domain.ErrTotalChunksMismatch, totalChunks, record.TotalChunks)
	}

	if partNumber == 1 {
		sniffed, err := sniffCSV(body)
		if err != nil {
			return nil, err
		}
		body = sniffed

		if !record.HasOpenSession() {
			if err := u.openSession(ctx, record, totalChunks); err != nil {
				return nil, err
			}
		}
	} else if !record.HasOpenSession() {
		return nil, fmt.Errorf("%w: part %d arrived before part 1", domain.ErrSessionMissing, partNumber)
	}

	rctx, cancel := u.remoteCtx(ctx)
	etag, err := u.storage.UploadPart(rctx, record.StorageKey, *record.RemoteSessionID, partNumber, body, size)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("failed to upload part %d: %w", partNumber, err)
	}

	count, err := u.uow.PartRepo().Append(ctx, record.ID, domain.UploadPart{PartNumber: partNumber, ETag: etag})
	if err != nil {
		return nil, fmt.Errorf("failed to record part %d: %w", partNumber, err)
	}

	receipt := &domain.PartReceipt{PartsCompleted: count, TotalChunks: totalChunks}
	if partNumber == totalChunks {
		if err := u.finalize(ctx, record.ID); err != nil {
			return nil, err
		}
		receipt.Completed = true
	}

	u.logger.Debug("part uploaded",
		"file_id", record.ID,
		"part_number", partNumber,
		"total_chunks", totalChunks)
	return receipt, nil
}

// openSession creates the remote session and pins it with totalChunks on the record
func (u *uploadService) openSession(ctx context.Context, record *domain.FileRecord, totalChunks int) error {
	rctx, cancel := u.remoteCtx(ctx)
	sessionID, err := u.storage.CreateMultipartSession(rctx, record.StorageKey, record.ContentType)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to open multipart session: %w", err)
	}

	if err := u.uow.FileRepo().SetRemoteSession(ctx, record.ID, &sessionID, totalChunks); err != nil {
		u.abortSession(ctx, record, sessionID, err)
		return fmt.Errorf("failed to save multipart session: %w", err)
	}

	record.RemoteSessionID = &sessionID
	record.TotalChunks = totalChunks
	return nil
}
