package file

import (
	"csv-drop/internal/core/domain"
	"csv-drop/internal/core/port"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// StatusClientClosedRequest is returned when the caller cancelled the upload
const StatusClientClosedRequest = 499

// multipart forms above this size spill to temp files
const multipartMemory = 8 << 20

// HandlerV1 is the handler for v1 upload and file routes
type HandlerV1 struct {
	uploadService port.UploadService
	logger        *slog.Logger
}

// NewFileHandlerV1 creates HandlerV1
func NewFileHandlerV1(service port.UploadService, logger *slog.Logger) *HandlerV1 {
	return &HandlerV1{
		uploadService: service,
		logger:        logger,
	}
}

// Routes exposes handler routes
func (h *HandlerV1) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/upload/init", h.InitUploadV1)
	router.Post("/upload", h.UploadFileV1)
	router.Post("/upload/{fileID}", h.SubmitPartV1)
	router.Get("/files", h.ListFilesV1)
	router.Get("/files/{fileID}", h.GetFileLinksV1)
	router.Delete("/files/{fileID}", h.DeleteFileV1)

	return router
}

// V1ErrorResponse is the body of every non 2xx response
type V1ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// StatusOf maps a service error to its HTTP status
func StatusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrCancelled):
		return StatusClientClosedRequest
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFileRecordNotFound), errors.Is(err, domain.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionMissing),
		errors.Is(err, domain.ErrIncompletePartSet),
		errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrFileNotReady),
		errors.Is(err, domain.ErrSessionExpired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *HandlerV1) writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := StatusOf(err)
	text := err.Error()

	switch {
	case status == http.StatusServiceUnavailable:
		h.logger.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
		text = "service unavailable"
	case errors.Is(err, domain.ErrRemoteRejected):
		h.logger.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
		text = domain.ErrRemoteRejected.Error()
	case status >= http.StatusInternalServerError:
		h.logger.Error(msg, "error", err, "request_id", middleware.GetReqID(r.Context()))
		text = "internal server error"
	default:
		h.logger.Warn(msg, "error", err, "status", status, "request_id", middleware.GetReqID(r.Context()))
	}

	h.writeJSON(w, status, V1ErrorResponse{Error: text})
}

func (h *HandlerV1) badRequest(w http.ResponseWriter, text string) {
	h.writeJSON(w, http.StatusBadRequest, V1ErrorResponse{Error: text})
}

func (h *HandlerV1) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("error encoding response", "error", err)
	}
}

func fileIDParam(r *http.Request) (uuid.UUID, error) {
	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		return uuid.Nil, errors.New("file id is required")
	}
	return uuid.Parse(fileID)
}
