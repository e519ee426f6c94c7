package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// FileStatus represents the status of a file
type FileStatus string

const (
	FileStatusUploading FileStatus = "uploading"
	FileStatusCompleted FileStatus = "completed"
	FileStatusFailed    FileStatus = "failed"
)

// CanTransitionTo reports whether the status may move to next. Transitions only go forward.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	switch s {
	case FileStatusUploading:
		return next == FileStatusCompleted || next == FileStatusFailed
	default:
		return false
	}
}

// FileRecord represents one logical upload
type FileRecord struct {
	ID              uuid.UUID
	TenantID        string
	OriginalName    string
	SizeBytes       int64
	ContentType     string
	StorageKey      string
	Status          FileStatus
	RemoteSessionID *string
	TotalChunks     int
	Parts           []UploadPart
	UploadedAt      time.Time
	UpdatedAt       time.Time
}

// HasOpenSession reports whether a remote multipart session is on record
func (f *FileRecord) HasOpenSession() bool {
	return f.RemoteSessionID != nil && *f.RemoteSessionID != ""
}

// UploadPart represents an uploaded part (chunk)
type UploadPart struct {
	PartNumber int
	ETag       string
}

// SortParts returns a copy of parts ordered by part number
func SortParts(parts []UploadPart) []UploadPart {
	sorted := make([]UploadPart, len(parts))
	copy(sorted, parts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PartNumber < sorted[j].PartNumber
	})
	return sorted
}

// ValidatePartSet checks that sorted parts hold exactly one entry per number in 1..totalChunks
func ValidatePartSet(sorted []UploadPart, totalChunks int) error {
	if totalChunks < 1 || len(sorted) != totalChunks {
		return ErrIncompletePartSet
	}
	for i, part := range sorted {
		if part.PartNumber != i+1 || part.ETag == "" {
			return ErrIncompletePartSet
		}
	}
	return nil
}

// SessionHandle is returned by Begin
type SessionHandle struct {
	ID         uuid.UUID
	StorageKey string
}

// PartReceipt is returned for every accepted part
type PartReceipt struct {
	PartsCompleted int
	TotalChunks    int
	Completed      bool
}

// FileLinks holds the signed read links of a completed file
type FileLinks struct {
	DownloadURL string
	PreviewURL  string
	ExpiresAt   time.Time
}
