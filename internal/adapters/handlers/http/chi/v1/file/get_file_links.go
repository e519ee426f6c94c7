package file

import (
	"net/http"
	"time"
)

// V1GetFileLinksResponse is the response to get file links
type V1GetFileLinksResponse struct {
	Success     bool      `json:"success"`
	DownloadURL string    `json:"downloadUrl"`
	PreviewURL  string    `json:"previewUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GetFileLinksV1 returns signed read links for a completed file
func (h *HandlerV1) GetFileLinksV1(w http.ResponseWriter, r *http.Request) {

	fileID, err := fileIDParam(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	links, err := h.uploadService.GetLinks(r.Context(), fileID)
	if err != nil {
		h.writeError(w, r, "error getting file links", err)
		return
	}

	h.writeJSON(w, http.StatusOK, V1GetFileLinksResponse{
		Success:     true,
		DownloadURL: links.DownloadURL,
		PreviewURL:  links.PreviewURL,
		ExpiresAt:   links.ExpiresAt,
	})
}
