package postgres

import (
	"context"
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type sqlFileRepository struct {
	db SQLQuerier
}

// NewSqlFileRepository creates sqlFileRepository that implements port.FileRepository
func NewSqlFileRepository(db SQLQuerier) port.FileRepository {
	return &sqlFileRepository{
		db: db,
	}
}

const fileRecordColumns = `id, tenant_id, original_name, size_bytes, content_type, storage_key,
                     status, remote_session_id, total_chunks, uploaded_at, updated_at`

// Create creates new file record
func (s *sqlFileRepository) Create(ctx context.Context, record domain.FileRecord) error {
	query := `INSERT INTO file_record (id, tenant_id, original_name, size_bytes, content_type, storage_key, status, remote_session_id, total_chunks)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.TenantID,
		record.OriginalName,
		record.SizeBytes,
		record.ContentType,
		record.StorageKey,
		record.Status,
		record.RemoteSessionID,
		record.TotalChunks,
	)
	if err != nil {
		return fmt.Errorf("error inserting file record: %w", err)
	}
	return nil
}

// FindByID finds a record by id along with its parts in append order
func (s *sqlFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error) {
	query := `SELECT ` + fileRecordColumns + `
              FROM file_record
              WHERE id = $1`

	var row dbFileRecord
	err := row.scan(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrFileRecordNotFound
		}
		return nil, fmt.Errorf("error finding file record: %w", err)
	}

	parts, err := NewSqlPartRepository(s.db).ListByFileID(ctx, id)
	if err != nil {
		return nil, err
	}

	record := row.ToDomain()
	record.Parts = parts
	return record, nil
}

// List lists every record, newest first
func (s *sqlFileRepository) List(ctx context.Context) ([]domain.FileRecord, error) {
	query := `SELECT ` + fileRecordColumns + `
              FROM file_record
              ORDER BY uploaded_at DESC, id`

	return s.query(ctx, query)
}

// UpdateStatus moves a record out of uploading. Terminal records are never changed.
func (s *sqlFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	if !domain.FileStatusUploading.CanTransitionTo(status) {
		return fmt.Errorf("%w: cannot move to %s", domain.ErrInvalidState, status)
	}

	query := `UPDATE file_record
              SET status = $1, updated_at = now()
              WHERE id = $2 AND status = 'uploading'`

	result, err := s.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("error updating file record: %w", err)
	}

	return s.checkAffected(ctx, result, id)
}

// SetRemoteSession stores the remote multipart session of an uploading record
func (s *sqlFileRepository) SetRemoteSession(ctx context.Context, id uuid.UUID, sessionID *string, totalChunks int) error {
	query := `UPDATE file_record
              SET remote_session_id = $1, total_chunks = $2, updated_at = now()
              WHERE id = $3 AND status = 'uploading'`

	result, err := s.db.ExecContext(ctx, query, sessionID, totalChunks, id)
	if err != nil {
		return fmt.Errorf("error updating file record: %w", err)
	}

	return s.checkAffected(ctx, result, id)
}

// Delete hard deletes a record, its parts go with it
func (s *sqlFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM file_record WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("error deleting file record: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return domain.ErrFileRecordNotFound
	}
	return nil
}

// FindStale finds uploads with no activity since cutoff
func (s *sqlFileRepository) FindStale(ctx context.Context, cutoff time.Time) ([]domain.FileRecord, error) {
	query := `SELECT ` + fileRecordColumns + `
              FROM file_record
              WHERE status = 'uploading'
                AND updated_at < $1
              ORDER BY updated_at`

	return s.query(ctx, query, cutoff)
}

func (s *sqlFileRepository) query(ctx context.Context, query string, args ...any) ([]domain.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying file records: %w", err)
	}
	defer rows.Close()

	records := make([]domain.FileRecord, 0)
	for rows.Next() {
		var row dbFileRecord
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("error scanning file record: %w", err)
		}
		records = append(records, *row.ToDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating file records: %w", err)
	}

	return records, nil
}

// checkAffected tells a missing record apart from one that is no longer uploading
func (s *sqlFileRepository) checkAffected(ctx context.Context, result sql.Result, id uuid.UUID) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM file_record WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("error checking file record: %w", err)
	}
	if !exists {
		return domain.ErrFileRecordNotFound
	}
	return domain.ErrInvalidState
}

type rowScanner interface {
	Scan(dest ...any) error
}

// dbFileRecord represents a file record in DB
type dbFileRecord struct {
	ID              uuid.UUID      `db:"id"`
	TenantID        string         `db:"tenant_id"`
	OriginalName    string         `db:"original_name"`
	Size            int64          `db:"size_bytes"`
	ContentType     string         `db:"content_type"`
	StorageKey      string         `db:"storage_key"`
	Status          string         `db:"status"`
	RemoteSessionID sql.NullString `db:"remote_session_id"`
	TotalChunks     int            `db:"total_chunks"`
	UploadedAt      time.Time      `db:"uploaded_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func (f *dbFileRecord) scan(row rowScanner) error {
	return row.Scan(
		&f.ID,
		&f.TenantID,
		&f.OriginalName,
		&f.Size,
		&f.ContentType,
		&f.StorageKey,
		&f.Status,
		&f.RemoteSessionID,
		&f.TotalChunks,
		&f.UploadedAt,
		&f.UpdatedAt,
	)
}

// ToDomain converts to domain.FileRecord
func (f *dbFileRecord) ToDomain() *domain.FileRecord {
	record := &domain.FileRecord{
		ID:           f.ID,
		TenantID:     f.TenantID,
		OriginalName: f.OriginalName,
		SizeBytes:    f.Size,
		ContentType:  f.ContentType,
		StorageKey:   f.StorageKey,
		Status:       domain.FileStatus(f.Status),
		TotalChunks:  f.TotalChunks,
		UploadedAt:   f.UploadedAt,
		UpdatedAt:    f.UpdatedAt,
	}
	if f.RemoteSessionID.Valid {
		sessionID := f.RemoteSessionID.String
		record.RemoteSessionID = &sessionID
	}
	return record
}
