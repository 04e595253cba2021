package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
)

// ContentService is the cache-or-generate pipeline behind the review, QnA and
// shipping-policy endpoints. One generation per distinct product fingerprint:
// repeat requests are served from the store, and merchant edits overwrite the
// stored payload without changing the fingerprint identity.
type ContentService struct {
	db  core.DbClient
	llm core.LLMProvider
}

func NewContentService(db core.DbClient, llm core.LLMProvider) *ContentService {
	return &ContentService{db: db, llm: llm}
}

// Resolve serves a content artifact for the request. With UserText set it is a
// write-through save; otherwise it returns the cached record or generates,
// validates and persists a new one. Nothing is persisted on generation or
// validation failure.
func (s *ContentService) Resolve(ctx context.Context, req models.ContentRequest) (*models.ContentRecord, error) {
	spec, ok := contentKinds[req.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown content kind %q", req.Kind)
	}

	hash := Fingerprint(req.Title, req.Description, req.ImageURL)

	// Explicit save path: never calls the generator.
	if strings.TrimSpace(req.UserText) != "" {
		rec := s.newRecord(req, hash, req.UserText, models.SourceUser)
		stored, err := s.db.UpsertContent(ctx, rec)
		if err != nil {
			return nil, contentErr(ErrPersistence, "save edited content", err)
		}
		stored.Kind = req.Kind
		return stored, nil
	}

	// A fingerprint over nothing but an image URL (or over nothing at all)
	// would collide across unrelated products, so generation requires at
	// least one of the text fields.
	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Description) == "" {
		return nil, contentErr(ErrMissingRequiredFields, "title and description are both empty", nil)
	}

	existing, err := s.db.FindContent(ctx, req.Kind, hash)
	if err != nil {
		return nil, contentErr(ErrPersistence, "look up cached content", err)
	}
	if existing != nil {
		existing.Kind = req.Kind
		return existing, nil
	}

	raw, err := s.llm.Generate(ctx, spec.systemPrompt, spec.userPrompt(req))
	if err != nil {
		return nil, contentErr(ErrGenerationUpstream, "generator call failed", err)
	}

	payload, err := spec.validate(raw)
	if err != nil {
		return nil, contentErr(ErrGenerationMalformed, "generator output failed validation", err)
	}

	rec := s.newRecord(req, hash, payload, models.SourceGenerated)
	stored, err := s.db.InsertContent(ctx, rec)
	if err != nil {
		return nil, contentErr(ErrPersistence, "persist generated content", err)
	}
	stored.Kind = req.Kind
	return stored, nil
}

func (s *ContentService) newRecord(req models.ContentRequest, hash, payload string, source models.ContentSource) *models.ContentRecord {
	return &models.ContentRecord{
		ID:                 uuid.NewString(),
		ContentHash:        hash,
		Kind:               req.Kind,
		ProductTitle:       req.Title,
		ProductDescription: req.Description,
		ProductImage:       req.ImageURL,
		Payload:            payload,
		Source:             source,
	}
}
