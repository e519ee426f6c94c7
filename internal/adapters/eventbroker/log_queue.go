package eventbroker

import (
	"context"
	"csv-drop/internal/core/domain"
	"log/slog"
)

// LogQueue is the compensation queue used when no broker is configured.
// Tasks are only logged so an operator can replay them.
type LogQueue struct {
	logger *slog.Logger
}

// NewLogQueue creates a new LogQueue
func NewLogQueue(logger *slog.Logger) *LogQueue {
	return &LogQueue{logger: logger}
}

// Enqueue logs the task and never fails
func (q *LogQueue) Enqueue(_ context.Context, task domain.CompensationTask) error {
	q.logger.Error("compensation task dropped, no queue configured",
		"kind", task.Kind,
		"file_id", task.FileID,
		"storage_key", task.StorageKey,
		"remote_session_id", task.RemoteSessionID,
		"reason", task.Reason)
	return nil
}
