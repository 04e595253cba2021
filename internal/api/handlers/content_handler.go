package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hanbit-dev/pagecraft/internal/models"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

// ContentHandler exposes the cache-or-generate pipeline, one route per kind.
type ContentHandler struct {
	content *services.ContentService
}

func NewContentHandler(content *services.ContentService) *ContentHandler {
	return &ContentHandler{content: content}
}

type contentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl"`
	// Text carries merchant-edited content; when set the call is a save, not a generate.
	Text string `json:"text"`
}

func (h *ContentHandler) GenerateReviews(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.KindReview)
}

func (h *ContentHandler) GenerateQnA(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.KindQnA)
}

func (h *ContentHandler) GeneratePolicy(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, models.KindShippingPolicy)
}

func (h *ContentHandler) resolve(w http.ResponseWriter, r *http.Request, kind models.ContentKind) {
	var req contentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	rec, err := h.content.Resolve(r.Context(), models.ContentRequest{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Kind:        kind,
		UserText:    req.Text,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Review payloads are JSON arrays; hand them back structured instead of
	// as an escaped string.
	var payload any = rec.Payload
	if kind == models.KindReview {
		entries, perr := services.ParseReviews(rec.Payload)
		if perr == nil {
			payload = entries
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"payload": payload,
		"source":  rec.Source,
	})
}
