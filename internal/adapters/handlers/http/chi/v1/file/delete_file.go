package file

import (
	"net/http"
)

// V1DeleteFileResponse is the response to delete file
type V1DeleteFileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// DeleteFileV1 deletes a file. An upload still in progress is aborted.
func (h *HandlerV1) DeleteFileV1(w http.ResponseWriter, r *http.Request) {

	fileID, err := fileIDParam(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	if err := h.uploadService.Delete(r.Context(), fileID); err != nil {
		h.writeError(w, r, "error deleting file", err)
		return
	}

	h.writeJSON(w, http.StatusOK, V1DeleteFileResponse{Success: true, Message: "File deleted successfully"})
}
