package port

import (
	"context"
	"time"
)

// CleanupService is service that handles cleanup
type CleanupService interface {
	SweepStaleUploads(ctx context.Context, cutoff time.Time) error
}
