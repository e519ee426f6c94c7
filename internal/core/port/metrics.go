package port

import "csv-drop/internal/core/domain"

// Metrics records upload outcomes and cleanup steps
type Metrics interface {
	UploadFinished(outcome domain.UploadOutcome)
	CompensationRan(step domain.CompensationKind, ok bool)
}
