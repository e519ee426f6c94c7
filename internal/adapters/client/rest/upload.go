package rest

import (
	"bytes"
	"context"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/core/domain"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// Begin opens a chunked upload
func (c *Client) Begin(ctx context.Context, fileName string, size int64, contentType string) (*domain.SessionHandle, error) {
	payload, err := json.Marshal(file.V1InitUploadRequest{FileName: fileName, Size: size, ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("failed to encode init request: %w", err)
	}

	var resp file.V1InitUploadResponse
	if err := c.do(ctx, http.MethodPost, "/upload/init", "application/json", bytes.NewReader(payload), &resp); err != nil {
		return nil, err
	}
	return &domain.SessionHandle{ID: resp.FileID}, nil
}

// SubmitPart streams one chunk as a multipart form
func (c *Client) SubmitPart(ctx context.Context, id uuid.UUID, partNumber int, totalChunks int, body io.Reader, size int64) (*domain.PartReceipt, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeChunkForm(writer, partNumber, totalChunks, body))
	}()

	var resp file.V1SubmitPartResponse
	err := c.do(ctx, http.MethodPost, "/upload/"+id.String(), writer.FormDataContentType(), pr, &resp)
	_ = pr.Close()
	if err != nil {
		return nil, err
	}

	c.logger.Debug("part uploaded", "file_id", id, "part_number", partNumber, "size", size)
	return &domain.PartReceipt{
		PartsCompleted: resp.PartsCompleted,
		TotalChunks:    resp.TotalChunks,
		Completed:      resp.Completed,
	}, nil
}

func writeChunkForm(writer *multipart.Writer, partNumber int, totalChunks int, body io.Reader) error {
	if err := writer.WriteField("partNumber", strconv.Itoa(partNumber)); err != nil {
		return err
	}
	if err := writer.WriteField("totalChunks", strconv.Itoa(totalChunks)); err != nil {
		return err
	}
	part, err := writer.CreateFormFile("chunk", "blob")
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return writer.Close()
}

// Abort asks the server to tear the upload down. An upload the server already removed counts as aborted.
func (c *Client) Abort(ctx context.Context, id uuid.UUID, reason error) error {
	if reason == nil {
		reason = domain.ErrCancelled
	}
	err := c.do(ctx, http.MethodDelete, "/files/"+id.String(), "", nil, nil)
	if err != nil && !errors.Is(err, domain.ErrFileRecordNotFound) {
		return fmt.Errorf("failed to abort upload %s: %w", id, err)
	}
	return domain.Surface(reason)
}
