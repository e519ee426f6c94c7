package rest

import (
	"context"
	"csv-drop/internal/adapters/handlers/http/chi/v1/file"
	"csv-drop/internal/core/domain"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client talks to the csv-drop REST API. It implements port.UploadSession.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// New creates a Client for the API served at baseURL
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// server messages mapped back to their sentinel, most specific first
var known = []error{
	domain.ErrInvalidFileType,
	domain.ErrFileSizeTooBig,
	domain.ErrEmptyPart,
	domain.ErrInvalidPartNumber,
	domain.ErrTotalChunksMismatch,
	domain.ErrIncompletePartSet,
	domain.ErrSessionMissing,
	domain.ErrSessionExpired,
	domain.ErrCancelled,
	domain.ErrFileNotReady,
	domain.ErrInvalidState,
	domain.ErrObjectNotFound,
	domain.ErrFileRecordNotFound,
	domain.ErrRemoteRejected,
}

func (c *Client) do(ctx context.Context, method string, path string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctxErr)
		}
		return fmt.Errorf("%w: %s %s: %w", domain.ErrRemoteUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body file.V1ErrorResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}

	for _, sentinel := range known {
		if strings.Contains(msg, sentinel.Error()) {
			return fmt.Errorf("%w (status %d)", sentinel, resp.StatusCode)
		}
	}

	switch resp.StatusCode {
	case file.StatusClientClosedRequest:
		return fmt.Errorf("%w: %s", domain.ErrCancelled, msg)
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrFileRecordNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrInvalidState, msg)
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", domain.ErrRemoteUnavailable, msg)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
	}
}
