package postgres

import (
	"context"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const foreignKeyViolation = "23503"

type sqlPartRepository struct {
	db SQLQuerier
}

// NewSqlPartRepository creates sqlPartRepository that implements port.PartRepository
func NewSqlPartRepository(db SQLQuerier) port.PartRepository {
	return &sqlPartRepository{db: db}
}

// Append records an uploaded part and returns how many parts the file now has.
// The owning record is touched so idle detection sees the activity.
func (s *sqlPartRepository) Append(ctx context.Context, fileID uuid.UUID, part domain.UploadPart) (int, error) {
	query := `
		WITH inserted AS (
			INSERT INTO upload_part (file_id, part_number, etag)
			VALUES ($1, $2, $3)
			RETURNING file_id
		), touched AS (
			UPDATE file_record SET updated_at = now()
			WHERE id = (SELECT file_id FROM inserted)
		)
		SELECT COUNT(*) + 1 FROM upload_part WHERE file_id = $1`

	var count int
	err := s.db.QueryRowContext(ctx, query, fileID, part.PartNumber, part.ETag).Scan(&count)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			return 0, domain.ErrFileRecordNotFound
		}
		return 0, fmt.Errorf("error appending upload part: %w", err)
	}
	return count, nil
}

// ListByFileID lists parts in append order
func (s *sqlPartRepository) ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.UploadPart, error) {
	query := `
		SELECT part_number, etag
		FROM upload_part
		WHERE file_id = $1
		ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, fmt.Errorf("error querying upload parts: %w", err)
	}
	defer rows.Close()

	parts := make([]domain.UploadPart, 0)
	for rows.Next() {
		var part domain.UploadPart
		if err := rows.Scan(&part.PartNumber, &part.ETag); err != nil {
			return nil, fmt.Errorf("error scanning upload part: %w", err)
		}
		parts = append(parts, part)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating upload parts: %w", err)
	}

	return parts, nil
}

// DeleteByFileID removes every part of a file
func (s *sqlPartRepository) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM upload_part WHERE file_id = $1`, fileID)
	if err != nil {
		return fmt.Errorf("error deleting upload parts: %w", err)
	}
	return nil
}
