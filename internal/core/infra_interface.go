package core

import (
	"context"

	"github.com/hanbit-dev/pagecraft/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres so higher layers never depend on a specific DB.
type DbClient interface {
	FindContent(ctx context.Context, kind models.ContentKind, hash string) (*models.ContentRecord, error)
	// InsertContent inserts rec unless a row with the same hash already exists,
	// in which case the existing row is returned unchanged (first insert wins).
	InsertContent(ctx context.Context, rec *models.ContentRecord) (*models.ContentRecord, error)
	// UpsertContent overwrites payload and source for the hash, keeping identity.
	UpsertContent(ctx context.Context, rec *models.ContentRecord) (*models.ContentRecord, error)

	SavePromptResult(ctx context.Context, result *models.PromptResult) error
	ListRecentPromptResults(ctx context.Context, userID string, limit int) ([]models.PromptResult, error)

	CreateModelImage(ctx context.Context, img *models.ModelImage) error
	ListRecentModelImages(ctx context.Context, userID string, limit int) ([]models.ModelImage, error)

	GetCompanyInfo(ctx context.Context, userID string) (*models.CompanyInfo, error)
	UpsertCompanyInfo(ctx context.Context, info *models.CompanyInfo) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
}

// LLMProvider generates text from prompts, optionally grounded on product images.
type LLMProvider interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
	GenerateWithImages(ctx context.Context, prompt string, images []ImageInput) (string, error)
}

// ImageInput is one inline image handed to a vision model.
type ImageInput struct {
	MIMEType string
	Data     []byte
}

// ImageSynthesizer produces a composite/fitted product image from reference images.
type ImageSynthesizer interface {
	TextToImage(ctx context.Context, promptText string, refs []ReferenceImage) (outputURL string, err error)
}

// ReferenceImage is a tagged reference handed to the image synthesis provider.
// URI is either a public URL or a data URL.
type ReferenceImage struct {
	URI string `json:"uri"`
	Tag string `json:"tag,omitempty"`
}
