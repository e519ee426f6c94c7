package file

import (
	"net/http"
	"strconv"
)

// V1SubmitPartResponse is the response to one uploaded chunk
type V1SubmitPartResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	PartsCompleted int    `json:"partsCompleted"`
	TotalChunks    int    `json:"totalChunks"`
	Completed      bool   `json:"completed"`
}

// SubmitPartV1 stores one chunk. The last chunk finalizes the file.
func (h *HandlerV1) SubmitPartV1(w http.ResponseWriter, r *http.Request) {

	fileID, err := fileIDParam(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.badRequest(w, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	partNumber, err := strconv.Atoi(r.FormValue("partNumber"))
	if err != nil {
		h.badRequest(w, "invalid partNumber")
		return
	}
	totalChunks, err := strconv.Atoi(r.FormValue("totalChunks"))
	if err != nil {
		h.badRequest(w, "invalid totalChunks")
		return
	}

	chunk, header, err := r.FormFile("chunk")
	if err != nil {
		h.badRequest(w, "no chunk provided")
		return
	}
	defer chunk.Close()

	receipt, err := h.uploadService.SubmitPart(r.Context(), fileID, partNumber, totalChunks, chunk, header.Size)
	if err != nil {
		h.writeError(w, r, "error uploading part", err)
		return
	}

	message := "Part uploaded successfully"
	if receipt.Completed {
		message = "File uploaded successfully"
	}
	h.writeJSON(w, http.StatusOK, V1SubmitPartResponse{
		Success:        true,
		Message:        message,
		PartsCompleted: receipt.PartsCompleted,
		TotalChunks:    receipt.TotalChunks,
		Completed:      receipt.Completed,
	})
}
