package upload

import (
	"bytes"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultContentType = "text/csv"
	// sniffLen is how many leading bytes are inspected for content detection
	sniffLen = 3072
	// maxParts is the multipart limit shared by S3 and MinIO
	maxParts = 10000
)

func (u *uploadService) validateFile(fileName string, size int64, contentType string) (string, error) {
	if strings.TrimSpace(fileName) == "" {
		return "", fmt.Errorf("%w: file name is required", domain.ErrValidation)
	}

	if err := validateExtension(fileName, u.cfg.AllowedExtensions); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidFileType, err)
	}

	mimeType := defaultContentType
	if strings.TrimSpace(contentType) != "" {
		mimeType = extractMimeType(contentType)
		if mimeType == "" {
			return "", fmt.Errorf("%w: invalid content type: %s", domain.ErrInvalidFileType, contentType)
		}
	}
	if !slices.Contains(u.cfg.AllowedMimeTypes, mimeType) {
		return "", fmt.Errorf("%w: unsupported MIME type: %s", domain.ErrInvalidFileType, mimeType)
	}

	if size <= 0 {
		return "", fmt.Errorf("%w: file size must be positive", domain.ErrValidation)
	}
	if size > u.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", domain.ErrFileSizeTooBig, size, u.cfg.MaxFileSize)
	}

	return mimeType, nil
}

func validateExtension(filename string, allowedExts []string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("no file extension found")
	}

	for _, allowed := range allowedExts {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf(
		"extension %s is not allowed (expected one of: %v)",
		ext, allowedExts,
	)
}

func extractMimeType(contentType string) string {
	mimeType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return mimeType
}

// sniffCSV checks that the first bytes are text and returns a reader that
// still yields the whole body
func sniffCSV(body io.Reader) (io.Reader, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrEmptyPart
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return io.MultiReader(bytes.NewReader(head), body), nil
		}
	}
	return nil, fmt.Errorf("%w: content detected as %s", domain.ErrInvalidFileType, detected.String())
}
