package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"errors"

	"github.com/google/uuid"
)

// Abort tears an upload down and returns reason mapped to its taxonomy error.
// Each step is best effort and a failed step is queued for retry.
// Aborting an id that is already gone only returns the reason.
func (u *uploadService) Abort(ctx context.Context, id uuid.UUID, reason error) error {
	if reason == nil {
		reason = domain.ErrCancelled
	}
	surfaced := domain.Surface(reason)

	cctx, cancel := u.cleanupCtx(ctx)
	defer cancel()

	record, err := u.uow.FileRepo().FindByID(cctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrFileRecordNotFound) {
			return surfaced
		}
		u.logger.Error("failed to load file record for abort", "file_id", id, "error", err)
		u.metrics.CompensationRan(domain.CompensationDeleteRecord, false)
		u.enqueue(cctx, domain.CompensationTask{
			Kind:   domain.CompensationDeleteRecord,
			FileID: id,
			Reason: surfaced.Error(),
		})
		return surfaced
	}

	if record.Status == domain.FileStatusCompleted {
		u.logger.Warn("refusing to abort a completed upload", "file_id", id, "reason", surfaced)
		return surfaced
	}

	if record.HasOpenSession() {
		u.abortSession(cctx, record, *record.RemoteSessionID, surfaced)
	}

	if err := u.uow.FileRepo().UpdateStatus(cctx, id, domain.FileStatusFailed); err != nil {
		u.logger.Debug("could not mark file record failed", "file_id", id, "error", err)
	}

	err = u.uow.FileRepo().Delete(cctx, id)
	if err != nil && !errors.Is(err, domain.ErrFileRecordNotFound) {
		u.logger.Error("failed to delete file record", "file_id", id, "error", err)
		u.metrics.CompensationRan(domain.CompensationDeleteRecord, false)
		u.enqueue(cctx, domain.CompensationTask{
			Kind:       domain.CompensationDeleteRecord,
			FileID:     id,
			StorageKey: record.StorageKey,
			Reason:     surfaced.Error(),
		})
	} else {
		u.metrics.CompensationRan(domain.CompensationDeleteRecord, true)
	}

	outcome := domain.OutcomeOf(surfaced)
	u.metrics.UploadFinished(outcome)
	u.logger.Warn("upload aborted",
		"file_id", id,
		"outcome", outcome,
		"reason", reason)
	return surfaced
}
