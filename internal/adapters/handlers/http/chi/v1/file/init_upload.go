package file

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// V1InitUploadRequest is the request to open a chunked upload
type V1InitUploadRequest struct {
	FileName    string `json:"filename"`
	Size        int64  `json:"size"`
	FileSize    int64  `json:"filesize"`
	ContentType string `json:"contentType"`
}

// V1InitUploadResponse is the response to open a chunked upload
type V1InitUploadResponse struct {
	Success bool      `json:"success"`
	FileID  uuid.UUID `json:"fileId"`
}

// InitUploadV1 creates the file record a chunked upload attaches its parts to
func (h *HandlerV1) InitUploadV1(w http.ResponseWriter, r *http.Request) {

	var req V1InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("error decoding init upload request", "error", err)
		h.badRequest(w, err.Error())
		return
	}

	size := req.Size
	if size == 0 {
		size = req.FileSize
	}
	if req.FileName == "" || size <= 0 {
		h.badRequest(w, "missing param")
		return
	}

	handle, err := h.uploadService.Begin(r.Context(), req.FileName, size, req.ContentType)
	if err != nil {
		h.writeError(w, r, "error initializing upload", err)
		return
	}

	h.logger.Info("upload initialized", "file_id", handle.ID, "filename", req.FileName, "size", size)
	h.writeJSON(w, http.StatusCreated, V1InitUploadResponse{Success: true, FileID: handle.ID})
}
