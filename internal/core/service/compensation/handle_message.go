package compensation

import (
	"context"
	"csv-drop/internal/core/domain"
	"encoding/json"
	"errors"
	"fmt"
)

// HandleMessage runs one queued cleanup step. Every step tolerates work that is already done,
// so a redelivered task is harmless. A returned error asks the broker to redeliver.
func (c *compensationService) HandleMessage(ctx context.Context, data []byte) error {
	var task domain.CompensationTask
	if err := json.Unmarshal(data, &task); err != nil {
		c.logger.Error("dropping unreadable compensation task", "error", err)
		return nil
	}

	c.logger.Info("handling compensation task",
		"kind", task.Kind,
		"file_id", task.FileID,
		"reason", task.Reason)

	var err error
	switch task.Kind {
	case domain.CompensationAbortSession:
		err = c.abortSession(ctx, task.StorageKey, task.RemoteSessionID)
	case domain.CompensationDeleteObject:
		err = c.deleteObject(ctx, task.StorageKey)
	case domain.CompensationDeleteRecord:
		err = c.deleteRecord(ctx, task)
	default:
		c.logger.Error("dropping compensation task of unknown kind", "kind", task.Kind)
		return nil
	}

	c.metrics.CompensationRan(task.Kind, err == nil)
	if err != nil {
		return fmt.Errorf("compensation %s for file %s failed: %w", task.Kind, task.FileID, err)
	}
	return nil
}

func (c *compensationService) abortSession(ctx context.Context, key string, sessionID string) error {
	if key == "" || sessionID == "" {
		c.logger.Warn("abort task without session, nothing to do")
		return nil
	}
	return c.storage.AbortMultipartSession(ctx, key, sessionID)
}

func (c *compensationService) deleteObject(ctx context.Context, key string) error {
	if key == "" {
		c.logger.Warn("delete task without storage key, nothing to do")
		return nil
	}
	err := c.storage.DeleteObject(ctx, key)
	if errors.Is(err, domain.ErrObjectNotFound) {
		return nil
	}
	return err
}

func (c *compensationService) deleteRecord(ctx context.Context, task domain.CompensationTask) error {
	record, err := c.uow.FileRepo().FindByID(ctx, task.FileID)
	if err != nil {
		if errors.Is(err, domain.ErrFileRecordNotFound) {
			return nil
		}
		return err
	}

	if record.Status == domain.FileStatusCompleted {
		c.logger.Warn("file completed since the task was queued, keeping it", "file_id", record.ID)
		return nil
	}

	if record.HasOpenSession() {
		if err := c.storage.AbortMultipartSession(ctx, record.StorageKey, *record.RemoteSessionID); err != nil {
			return err
		}
	}

	if err := c.uow.FileRepo().UpdateStatus(ctx, record.ID, domain.FileStatusFailed); err != nil {
		c.logger.Debug("could not mark file record failed", "file_id", record.ID, "error", err)
	}

	err = c.uow.FileRepo().Delete(ctx, record.ID)
	if err != nil && !errors.Is(err, domain.ErrFileRecordNotFound) {
		return err
	}
	return nil
}
