package rest

import (
	"context"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/core/domain"
	"net/http"

	"github.com/google/uuid"
)

// List returns every file, newest first
func (c *Client) List(ctx context.Context) ([]domain.FileRecord, error) {
	var resp []file.V1FileSummary
	if err := c.do(ctx, http.MethodGet, "/files", "", nil, &resp); err != nil {
		return nil, err
	}

	records := make([]domain.FileRecord, 0, len(resp))
	for _, s := range resp {
		records = append(records, domain.FileRecord{
			ID:           s.ID,
			OriginalName: s.OriginalName,
			StorageKey:   s.Filename,
			SizeBytes:    s.Size,
			ContentType:  s.ContentType,
			Status:       s.Status,
			UploadedAt:   s.UploadedAt,
		})
	}
	return records, nil
}

// Links returns signed read links for a completed file
func (c *Client) Links(ctx context.Context, id uuid.UUID) (*domain.FileLinks, error) {
	var resp file.V1GetFileLinksResponse
	if err := c.do(ctx, http.MethodGet, "/files/"+id.String(), "", nil, &resp); err != nil {
		return nil, err
	}
	return &domain.FileLinks{
		DownloadURL: resp.DownloadURL,
		PreviewURL:  resp.PreviewURL,
		ExpiresAt:   resp.ExpiresAt,
	}, nil
}

// Delete removes a file, aborting it if it is still uploading
func (c *Client) Delete(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/files/"+id.String(), "", nil, nil)
}
