package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hanbit-dev/pagecraft/internal/models"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

// SidebarHandler serves the builder sidebar aggregate and its edits.
type SidebarHandler struct {
	sidebar *services.SidebarService
}

func NewSidebarHandler(sidebar *services.SidebarService) *SidebarHandler {
	return &SidebarHandler{sidebar: sidebar}
}

func (h *SidebarHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	info, err := h.sidebar.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}

type sidebarUpdateRequest struct {
	CompanyInfo *models.CompanyInfo `json:"companyInfo"`
}

func (h *SidebarHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	if userID == "" {
		http.Error(w, "userId is required", http.StatusBadRequest)
		return
	}

	var req sidebarUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.CompanyInfo == nil {
		http.Error(w, "nothing to update", http.StatusBadRequest)
		return
	}

	req.CompanyInfo.UserID = userID
	if err := h.sidebar.SaveCompanyInfo(r.Context(), req.CompanyInfo); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type savePromptRequest struct {
	EditedPrompt string `json:"editedPrompt"`
	UserID       string `json:"userId"`
}

func (h *SidebarHandler) SaveEditedPrompt(w http.ResponseWriter, r *http.Request) {
	var req savePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.sidebar.SaveEditedPrompt(r.Context(), req.UserID, req.EditedPrompt); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
