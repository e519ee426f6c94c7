package port

import (
	"context"
	"csv-drop/internal/core/domain"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileRepository is an interface to define file record repository interactions
type FileRepository interface {
	Create(ctx context.Context, record domain.FileRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.FileRecord, error)
	List(ctx context.Context) ([]domain.FileRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
	SetRemoteSession(ctx context.Context, id uuid.UUID, sessionID *string, totalChunks int) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindStale(ctx context.Context, cutoff time.Time) ([]domain.FileRecord, error)
}

// PartRepository is an interface to define upload part repository interactions
type PartRepository interface {
	Append(ctx context.Context, fileID uuid.UUID, part domain.UploadPart) (int, error)
	ListByFileID(ctx context.Context, fileID uuid.UUID) ([]domain.UploadPart, error)
	DeleteByFileID(ctx context.Context, fileID uuid.UUID) error
}

// ObjectStorage is an interface to define object store interactions
type ObjectStorage interface {
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	CreateMultipartSession(ctx context.Context, key string, contentType string) (string, error)
	UploadPart(ctx context.Context, key string, sessionID string, partNumber int, body io.Reader, size int64) (string, error)
	CompleteMultipartSession(ctx context.Context, key string, sessionID string, parts []domain.UploadPart) error
	AbortMultipartSession(ctx context.Context, key string, sessionID string) error
	DeleteObject(ctx context.Context, key string) error
	SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, *time.Time, error)
}

// UploadSession is the part of the upload flow a chunk scheduler drives
type UploadSession interface {
	Begin(ctx context.Context, fileName string, size int64, contentType string) (*domain.SessionHandle, error)
	SubmitPart(ctx context.Context, id uuid.UUID, partNumber int, totalChunks int, body io.Reader, size int64) (*domain.PartReceipt, error)
	Abort(ctx context.Context, id uuid.UUID, reason error) error
}

// UploadService is an interface to define upload service
type UploadService interface {
	UploadSession
	Finalize(ctx context.Context, id uuid.UUID) error
	UploadWhole(ctx context.Context, fileName string, size int64, contentType string, body io.Reader) (*domain.FileRecord, error)
	List(ctx context.Context) ([]domain.FileRecord, error)
	GetLinks(ctx context.Context, id uuid.UUID) (*domain.FileLinks, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
