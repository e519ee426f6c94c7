package file

import (
	"csv-drop/internal/core/domain"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// V1FileSummary is one entry of the file listing
type V1FileSummary struct {
	ID           uuid.UUID         `json:"id"`
	Filename     string            `json:"filename"`
	OriginalName string            `json:"originalName"`
	Size         int64             `json:"size"`
	ContentType  string            `json:"contentType"`
	Status       domain.FileStatus `json:"status"`
	UploadedAt   time.Time         `json:"uploadedAt"`
}

// ListFilesV1 lists every file, newest first
func (h *HandlerV1) ListFilesV1(w http.ResponseWriter, r *http.Request) {

	records, err := h.uploadService.List(r.Context())
	if err != nil {
		h.writeError(w, r, "error listing files", err)
		return
	}

	resp := make([]V1FileSummary, 0, len(records))
	for _, record := range records {
		resp = append(resp, V1FileSummary{
			ID:           record.ID,
			Filename:     record.StorageKey,
			OriginalName: record.OriginalName,
			Size:         record.SizeBytes,
			ContentType:  record.ContentType,
			Status:       record.Status,
			UploadedAt:   record.UploadedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}
