package cleanup

import (
	"context"
	"csv-drop/internal/core/domain"
	"time"
)

// SweepStaleUploads aborts every upload not touched since cutoff
func (c *cleanupService) SweepStaleUploads(ctx context.Context, cutoff time.Time) error {
	records, err := c.uow.FileRepo().FindStale(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, record := range records {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// Abort reports the reason back, failed steps are already queued by it
		_ = c.uploads.Abort(ctx, record.ID, domain.ErrSessionExpired)
		c.logger.Info("stale upload aborted",
			"file_id", record.ID,
			"last_activity", record.UpdatedAt)
	}

	c.logger.Info("stale upload sweep completed", "aborted", len(records))
	return nil
}
