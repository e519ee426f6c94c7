package file

import (
	"net/http"

	"github.com/google/uuid"
)

// V1UploadFileResponse is the response to a single request upload
type V1UploadFileResponse struct {
	Success bool      `json:"success"`
	FileID  uuid.UUID `json:"fileId"`
	Message string    `json:"message"`
}

// UploadFileV1 stores a small file sent whole in the multipart field "file"
func (h *HandlerV1) UploadFileV1(w http.ResponseWriter, r *http.Request) {

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.badRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.badRequest(w, "no file provided")
		return
	}
	defer file.Close()

	record, err := h.uploadService.UploadWhole(r.Context(), header.Filename, header.Size, header.Header.Get("Content-Type"), file)
	if err != nil {
		h.writeError(w, r, "error uploading file", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, V1UploadFileResponse{
		Success: true,
		FileID:  record.ID,
		Message: "File uploaded successfully",
	})
}
