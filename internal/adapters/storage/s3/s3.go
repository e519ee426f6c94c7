package s3

import (
	"context"
	"csv-drop/internal/config"
	"csv-drop/internal/core/domain"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// API is the subset of the S3 client used by the adapter
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Presigner signs read requests
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Adapter is an adapter for AWS S3 and S3 compatible stores
type Adapter struct {
	api       API
	presigner Presigner
	bucket    string
	logger    *slog.Logger
}

// NewAdapter loads the AWS configuration and returns Adapter
func NewAdapter(ctx context.Context, cfg config.S3Config, logger *slog.Logger) (*Adapter, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewAdapterWithClient(client, s3.NewPresignClient(client), cfg.BucketName, logger), nil
}

// NewAdapterWithClient returns Adapter over an existing client
func NewAdapterWithClient(api API, presigner Presigner, bucket string, logger *slog.Logger) *Adapter {
	return &Adapter{api: api, presigner: presigner, bucket: bucket, logger: logger}
}

// PutObject stores a whole object in a single request
func (a *Adapter) PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	_, err := a.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", classify(err))
	}
	return nil
}

// CreateMultipartSession inits a multi part upload
func (a *Adapter) CreateMultipartSession(ctx context.Context, key string, contentType string) (string, error) {
	out, err := a.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to init multipart upload: %w", classify(err))
	}
	if out.UploadId == nil || *out.UploadId == "" {
		return "", fmt.Errorf("failed to init multipart upload: %w", domain.ErrRemoteRejected)
	}
	return *out.UploadId, nil
}

// UploadPart streams one part into an open multipart upload and returns its ETag
func (a *Adapter) UploadPart(ctx context.Context, key string, sessionID string, partNumber int, body io.Reader, size int64) (string, error) {
	out, err := a.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		UploadId:      aws.String(sessionID),
		PartNumber:    aws.Int32(int32(partNumber)),
		Body:          body,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload part %d: %w", partNumber, classify(err))
	}
	return strings.Trim(aws.ToString(out.ETag), "\""), nil
}

// CompleteMultipartSession marks the multipart upload as complete
func (a *Adapter) CompleteMultipartSession(ctx context.Context, key string, sessionID string, parts []domain.UploadPart) error {
	sorted := domain.SortParts(parts)

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, part := range sorted {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(int32(part.PartNumber)),
			ETag:       aws.String(part.ETag),
		})
	}

	_, err := a.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(a.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(sessionID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return fmt.Errorf("failed to complete multipart upload: %w", classify(err))
	}
	return nil
}

// AbortMultipartSession aborts an open multipart upload. An upload that is already gone counts as aborted.
func (a *Adapter) AbortMultipartSession(ctx context.Context, key string, sessionID string) error {
	_, err := a.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(a.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(sessionID),
	})
	if err != nil {
		var noSuchUpload *types.NoSuchUpload
		if errors.As(err, &noSuchUpload) || errorCode(err) == "NoSuchUpload" {
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
	_, err := a.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", classify(err))
	}

	a.logger.Info("object deleted",
		slog.String("key", key),
		slog.String("bucket", a.bucket))
	return nil
}

// SignedReadURL generates a presigned GET url for an existing object
func (a *Adapter) SignedReadURL(ctx context.Context, key string, ttl time.Duration) (string, *time.Time, error) {
	if _, err := a.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return "", nil, fmt.Errorf("failed to get object info: %w", classify(err))
	}

	req, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate presigned download URL: %w", classify(err))
	}

	expiresAt := time.Now().Add(ttl)
	return req.URL, &expiresAt, nil
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

func statusCode(err error) int {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}

// classify attaches the store error kind to err
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	code := errorCode(err)
	status := statusCode(err)
	switch {
	case code == "NoSuchKey", code == "NotFound":
		return fmt.Errorf("%w: %w", domain.ErrObjectNotFound, err)
	case code == "InvalidPart", code == "InvalidPartOrder", code == "EntityTooSmall":
		return fmt.Errorf("%w: %w", domain.ErrIncompletePartSet, err)
	case code == "SlowDown", code == "RequestTimeout", code == "ServiceUnavailable", code == "InternalError":
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	case code == "" || status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrRemoteRejected, err)
	}
}
