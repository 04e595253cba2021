package models

import (
	"time"
)

// ContentKind selects which generation template and table a content request targets.
type ContentKind string

const (
	KindReview         ContentKind = "review"
	KindQnA            ContentKind = "qna"
	KindShippingPolicy ContentKind = "shipping_policy"
)

// ContentSource marks whether a stored payload came from the generator or from a
// merchant editing it by hand.
type ContentSource string

const (
	SourceGenerated ContentSource = "generated"
	SourceUser      ContentSource = "user"
)

// ContentRequest is one invocation of the cache-or-generate pipeline.
// UserText, when set, turns the call into a write-through save of edited content.
type ContentRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ImageURL    string      `json:"imageUrl"`
	Kind        ContentKind `json:"-"`
	UserText    string      `json:"text"`
}

// ContentRecord is the persisted artifact, unique per (kind, content_hash).
type ContentRecord struct {
	ID                 string        `db:"id" json:"id"`
	ContentHash        string        `db:"product_hash" json:"-"`
	Kind               ContentKind   `db:"-" json:"kind"`
	ProductTitle       string        `db:"product_title" json:"product_title"`
	ProductDescription string        `db:"product_description" json:"product_description"`
	ProductImage       string        `db:"product_image" json:"product_image,omitempty"`
	Payload            string        `db:"payload" json:"payload"`
	Source             ContentSource `db:"source" json:"source"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updated_at"`
}

// ReviewEntry is one generated customer review inside a review payload.
type ReviewEntry struct {
	Author  string   `json:"author"`
	Rating  int      `json:"rating"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Date    string   `json:"date,omitempty"`
}

// PromptResult stores the outcome of a prompt session (generated or user-edited).
type PromptResult struct {
	ID              string         `db:"id" json:"id"`
	UserID          string         `db:"user_id" json:"user_id"`
	ImageURL        string         `db:"image_url" json:"image_url,omitempty"`
	Reply           string         `db:"reply" json:"reply,omitempty"`
	GeneratedPrompt string         `db:"generated_prompt" json:"generated_prompt,omitempty"`
	Categories      map[string]any `db:"categories" json:"categories,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// CompanyInfo holds the merchant details shown in the builder sidebar.
type CompanyInfo struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	Email     string    `db:"email" json:"email,omitempty"`
	Address   string    `db:"address" json:"address,omitempty"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ModelImage is an uploaded model/product photo kept for reuse across sessions.
type ModelImage struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ImageURL  string    `db:"image_url" json:"image_url"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
