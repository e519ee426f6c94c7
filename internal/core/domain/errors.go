package domain

import (
	"context"
	"errors"
	"fmt"
)

// ErrValidation is the root of every bad-input error. Never retried.
var ErrValidation = errors.New("validation error")

// ErrInvalidFileType is an error thrown when the file extension, content type or content is not accepted
var ErrInvalidFileType = fmt.Errorf("%w: invalid file type", ErrValidation)

// ErrFileSizeTooBig is an error thrown when file size is too big
var ErrFileSizeTooBig = fmt.Errorf("%w: file size too big", ErrValidation)

// ErrEmptyPart is an error thrown when a part carries no bytes
var ErrEmptyPart = fmt.Errorf("%w: empty part", ErrValidation)

// ErrInvalidPartNumber is an error thrown when part number or total chunks are out of range
var ErrInvalidPartNumber = fmt.Errorf("%w: invalid part number", ErrValidation)

// ErrTotalChunksMismatch is an error thrown when a part disagrees with the total pinned at part 1
var ErrTotalChunksMismatch = fmt.Errorf("%w: total chunks mismatch", ErrValidation)

// ErrRemoteUnavailable is a transient object store failure
var ErrRemoteUnavailable = errors.New("remote store unavailable")

// ErrRemoteRejected is a permanent object store failure
var ErrRemoteRejected = errors.New("remote store rejected request")

// ErrIncompletePartSet is an error thrown when parts are not exactly 1..totalChunks at finalize
var ErrIncompletePartSet = errors.New("incomplete part set")

// ErrSessionMissing is an error thrown when a part arrives with no open multipart session
var ErrSessionMissing = errors.New("multipart session missing")

// ErrCancelled is an error thrown when the caller cancelled the upload
var ErrCancelled = errors.New("upload cancelled")

// ErrSessionExpired is an error thrown when an upload was left idle for too long
var ErrSessionExpired = errors.New("upload session expired")

// ErrFileRecordNotFound is an error thrown when the file record is not found
var ErrFileRecordNotFound = errors.New("file record not found")

// ErrObjectNotFound is an error thrown when the object does not exist in the store
var ErrObjectNotFound = errors.New("object not found")

// ErrInvalidState is an error thrown when an operation does not apply to the record's status
var ErrInvalidState = errors.New("invalid file state")

// ErrFileNotReady is an error thrown when file is not ready
var ErrFileNotReady = errors.New("file not ready")

var surfaced = []error{
	ErrCancelled,
	ErrSessionExpired,
	ErrIncompletePartSet,
	ErrSessionMissing,
	ErrRemoteRejected,
	ErrRemoteUnavailable,
	ErrValidation,
	ErrInvalidState,
	ErrFileRecordNotFound,
}

// Classify maps any failure to the taxonomy error reported to callers.
// Context cancellation is a caller cancel, a missed deadline is an unavailable remote.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrRemoteUnavailable
	}
	for _, s := range surfaced {
		if errors.Is(err, s) {
			return s
		}
	}
	return ErrRemoteUnavailable
}

// Surface returns err so that it matches its taxonomy error with errors.Is
// while keeping the original cause in the chain.
func Surface(err error) error {
	if err == nil {
		return nil
	}
	kind := Classify(err)
	if errors.Is(err, kind) {
		return err
	}
	return fmt.Errorf("%w: %w", kind, err)
}
