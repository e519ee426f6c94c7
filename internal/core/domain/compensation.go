package domain

import "github.com/google/uuid"

// CompensationKind is the cleanup step to retry
type CompensationKind string

const (
	CompensationAbortSession CompensationKind = "abort_session"
	CompensationDeleteObject CompensationKind = "delete_object"
	CompensationDeleteRecord CompensationKind = "delete_record"
)

// CompensationTask is a cleanup step that failed in the foreground and is retried asynchronously
type CompensationTask struct {
	Kind            CompensationKind `json:"kind"`
	FileID          uuid.UUID        `json:"file_id"`
	StorageKey      string           `json:"storage_key,omitempty"`
	RemoteSessionID string           `json:"remote_session_id,omitempty"`
	Reason          string           `json:"reason,omitempty"`
}

// UploadOutcome is the terminal result of one logical upload
type UploadOutcome string

const (
	UploadOutcomeCompleted UploadOutcome = "completed"
	UploadOutcomeCancelled UploadOutcome = "cancelled"
	UploadOutcomeExpired   UploadOutcome = "expired"
	UploadOutcomeFailed    UploadOutcome = "failed"
)

// OutcomeOf maps the reason an upload ended to its outcome
func OutcomeOf(reason error) UploadOutcome {
	switch Classify(reason) {
	case nil:
		return UploadOutcomeCompleted
	case ErrCancelled:
		return UploadOutcomeCancelled
	case ErrSessionExpired:
		return UploadOutcomeExpired
	default:
		return UploadOutcomeFailed
	}
}
