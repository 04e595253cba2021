package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

// MediaHandler covers image upload and fitting-cut synthesis.
type MediaHandler struct {
	media       *services.MediaService
	maxUploadMB int
}

func NewMediaHandler(media *services.MediaService, maxUploadMB int) *MediaHandler {
	return &MediaHandler{media: media, maxUploadMB: maxUploadMB}
}

// Upload accepts one multipart image (field "image") and returns its hosted URL.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.maxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		http.Error(w, fmt.Sprintf("upload too large (max %d MB)", h.maxUploadMB), http.StatusRequestEntityTooLarge)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read upload", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	userID := r.FormValue("userId")
	if userID == "" {
		userID = "guest"
	}

	img, err := h.media.UploadImage(r.Context(), userID, header.Filename, contentType, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": img.ImageURL, "id": img.ID})
}

type fittingCutRequest struct {
	Cut             string                `json:"cut"`
	ReferenceImages []core.ReferenceImage `json:"referenceImages"`
}

func (h *MediaHandler) FittingCut(w http.ResponseWriter, r *http.Request) {
	var req fittingCutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	outputURL, err := h.media.FittingCut(r.Context(), req.Cut, req.ReferenceImages)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"outputUrl": outputURL})
}
