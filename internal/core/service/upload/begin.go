package upload

import (
	"context"
	"csv-drop/internal/core/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Begin validates the declared file and creates its record. No remote session is opened yet.
func (u *uploadService) Begin(ctx context.Context, fileName string, size int64, contentType string) (*domain.SessionHandle, error) {
	record, err := u.begin(ctx, fileName, size, contentType)
	if err != nil {
		return nil, err
	}
	return &domain.SessionHandle{ID: record.ID, StorageKey: record.StorageKey}, nil
}

func (u *uploadService) begin(ctx context.Context, fileName string, size int64, contentType string) (*domain.FileRecord, error) {
	mimeType, err := u.validateFile(fileName, size, contentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := domain.FileRecord{
		ID:           uuid.New(),
		TenantID:     u.cfg.TenantID,
		OriginalName: fileName,
		SizeBytes:    size,
		ContentType:  mimeType,
		StorageKey:   u.storageKey(fileName),
		Status:       domain.FileStatusUploading,
		UploadedAt:   now,
		UpdatedAt:    now,
	}

	if err := u.uow.FileRepo().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	u.logger.Info("upload started",
		"file_id", record.ID,
		"file_name", fileName,
		"size", size,
		"storage_key", record.StorageKey)
	return &record, nil
}
