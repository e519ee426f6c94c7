package minio

import (
	"context"
	"csv-drop/internal/config"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Adapter is an adapter for minio
type Adapter struct {
	client *minio.Client
	core   *minio.Core
	config config.MinioConfig
	logger *slog.Logger
}

// NewAdapter returns Adapter
func NewAdapter(ctx context.Context, cfg config.MinioConfig, logger *slog.Logger) (*Adapter, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check if bucket exists: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.BucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	core := minio.Core{Client: client}
	return &Adapter{client: client, config: cfg, core: &core, logger: logger}, nil
}

// PutObject stores a whole object in a single request
func (a *Adapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := a.client.PutObject(ctx, a.config.BucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", classify(err))
	}
	return nil
}

// CreateMultipartSession inits a multi part upload
func (a *Adapter) CreateMultipartSession(ctx context.Context, key string, contentType string) (string, error) {
	uploadID, err := a.core.NewMultipartUpload(ctx, a.config.BucketName, key, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", classify(err))
	}
	return uploadID, nil
}

// UploadPart streams one part into an open multipart upload and returns its ETag
func (a *Adapter) UploadPart(ctx context.Context, key string, sessionID string, partNumber int, body io.Reader, size int64) (string, error) {
	part, err := a.core.PutObjectPart(ctx, a.config.BucketName, key, sessionID, partNumber, body, size, minio.PutObjectPartOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to upload part %d: %w", partNumber, classify(err))
	}
	return strings.Trim(part.ETag, "\""), nil
}

// CompleteMultipartSession marks the minio multipart as complete
func (a *Adapter) CompleteMultipartSession(ctx context.Context, key string, sessionID string, parts []domain.UploadPart) error {
	sorted := domain.SortParts(parts)

	completeParts := make([]minio.CompletePart, 0, len(sorted))
	for _, part := range sorted {
		completeParts = append(completeParts, minio.CompletePart{
			PartNumber: part.PartNumber,
			ETag:       strings.Trim(part.ETag, "\""),
		})
	}

	_, err := a.core.CompleteMultipartUpload(ctx, a.config.BucketName, key, sessionID, completeParts, minio.PutObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", classify(err))
	}

	return nil
}

// AbortMultipartSession aborts an open multipart upload. An upload that is already gone counts as aborted.
func (a *Adapter) AbortMultipartSession(ctx context.Context, key string, sessionID string) error {
	err := a.core.AbortMultipartUpload(ctx, a.config.BucketName, key, sessionID)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchUpload" {
			a.logger.Debug("multipart upload already gone", "key", key, "session_id", sessionID)
			return nil
		}
		return fmt.Errorf("failed to abort multipart upload: %w", classify(err))
	}

	a.logger.Info("multipart upload aborted",
		slog.String("key", key),
		slog.String("session_id", sessionID))

	return nil
}

// DeleteObject deletes an object from storage
func (a *Adapter) DeleteObject(ctx context.Context, key string) error {
	err := a.client.RemoveObject(ctx, a.config.BucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", classify(err))
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.config.BucketName))

	return nil
}

// SignedReadURL generates a presigned GET url for an existing object
func (a *Adapter) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, *time.Time, error) {
	if _, err := a.client.StatObject(ctx, a.config.BucketName, key, minio.StatObjectOptions{}); err != nil {
		return "", nil, fmt.Errorf("failed to get object info: %w", classify(err))
	}

	presignedURL, err := a.client.PresignedGetObject(ctx, a.config.BucketName, key, ttl, make(url.Values))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate presigned download URL: %w", classify(err))
	}

	expiresAt := time.Now().Add(ttl)
	return presignedURL.String(), &expiresAt, nil
}

// classify attaches the store error kind to err
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchKey":
		return fmt.Errorf("%w: %w", domain.ErrObjectNotFound, err)
	case resp.Code == "InvalidPart", resp.Code == "InvalidPartOrder", resp.Code == "EntityTooSmall":
		return fmt.Errorf("%w: %w", domain.ErrIncompletePartSet, err)
	case resp.Code == "" || resp.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrRemoteRejected, err)
	}
}
