package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
)

// SidebarService backs the builder sidebar: merchant company details, recently
// uploaded images and recent prompt sessions.
type SidebarService struct {
	db core.DbClient
}

func NewSidebarService(db core.DbClient) *SidebarService {
	return &SidebarService{db: db}
}

// SidebarInfo is the aggregated view the builder loads on open.
type SidebarInfo struct {
	CompanyInfo   *models.CompanyInfo   `json:"companyInfo"`
	RecentImages  []models.ModelImage   `json:"recentImages"`
	RecentPrompts []models.PromptResult `json:"recentPrompts"`
}

func (s *SidebarService) Get(ctx context.Context, userID string) (*SidebarInfo, error) {
	company, err := s.db.GetCompanyInfo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("company info: %w", err)
	}

	images, err := s.db.ListRecentModelImages(ctx, userID, 5)
	if err != nil {
		return nil, fmt.Errorf("recent images: %w", err)
	}

	prompts, err := s.db.ListRecentPromptResults(ctx, userID, 3)
	if err != nil {
		return nil, fmt.Errorf("recent prompts: %w", err)
	}

	if images == nil {
		images = []models.ModelImage{}
	}
	if prompts == nil {
		prompts = []models.PromptResult{}
	}
	return &SidebarInfo{CompanyInfo: company, RecentImages: images, RecentPrompts: prompts}, nil
}

func (s *SidebarService) SaveCompanyInfo(ctx context.Context, info *models.CompanyInfo) error {
	if info == nil || info.UserID == "" {
		return fmt.Errorf("company info requires a user id")
	}
	return s.db.UpsertCompanyInfo(ctx, info)
}

// SaveEditedPrompt persists a manually edited prompt as a prompt session result.
func (s *SidebarService) SaveEditedPrompt(ctx context.Context, userID, editedPrompt string) error {
	if userID == "" {
		userID = "guest"
	}
	editedPrompt = strings.TrimSpace(editedPrompt)
	if len(editedPrompt) < 10 {
		return contentErr(ErrMissingRequiredFields, "prompt text too short", nil)
	}
	result := &models.PromptResult{
		ID:              uuid.NewString(),
		UserID:          userID,
		Reply:           editedPrompt,
		GeneratedPrompt: editedPrompt,
		Categories:      map[string]any{},
	}
	if err := s.db.SavePromptResult(ctx, result); err != nil {
		return contentErr(ErrPersistence, "save edited prompt", err)
	}
	return nil
}
