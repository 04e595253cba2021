package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hanbit-dev/pagecraft/internal/config"
	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
)

// contentTables maps a content kind to its backing table. All three share the
// same shape with a unique index on product_hash. Only values from this map are
// ever interpolated into SQL.
var contentTables = map[models.ContentKind]string{
	models.KindReview:         "generated_reviews",
	models.KindQnA:            "product_qna",
	models.KindShippingPolicy: "shipping_policies",
}

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func contentTable(kind models.ContentKind) (string, error) {
	table, ok := contentTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown content kind %q", kind)
	}
	return table, nil
}

func (c *DatabaseClient) FindContent(ctx context.Context, kind models.ContentKind, hash string) (*models.ContentRecord, error) {
	table, err := contentTable(kind)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		SELECT id, product_title, product_description, product_image, product_hash,
		       payload, source, created_at, updated_at
		FROM %s WHERE product_hash = $1
	`, table)

	rec := models.ContentRecord{Kind: kind}
	err = c.db.QueryRowContext(ctx, q, hash).Scan(
		&rec.ID, &rec.ProductTitle, &rec.ProductDescription, &rec.ProductImage,
		&rec.ContentHash, &rec.Payload, &rec.Source, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertContent inserts rec, ignoring the conflict when another writer got there
// first. The row that actually lives in the table is returned either way, so
// concurrent generate calls for the same fingerprint converge on one record.
func (c *DatabaseClient) InsertContent(ctx context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	if rec == nil {
		return nil, errors.New("nil content record")
	}
	table, err := contentTable(rec.Kind)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (id, product_title, product_description, product_image,
		                product_hash, payload, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_hash) DO NOTHING
		RETURNING id, created_at, updated_at
	`, table)

	stored := *rec
	err = c.db.QueryRowContext(ctx, q,
		rec.ID, rec.ProductTitle, rec.ProductDescription, rec.ProductImage,
		rec.ContentHash, rec.Payload, rec.Source,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// Lost the race: hand back whatever the first writer persisted.
		existing, ferr := c.FindContent(ctx, rec.Kind, rec.ContentHash)
		if ferr != nil {
			return nil, ferr
		}
		if existing == nil {
			return nil, fmt.Errorf("insert conflict but no row found for hash %s", rec.ContentHash)
		}
		return existing, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// UpsertContent overwrites payload and source for the fingerprint, keeping the
// row identity and created_at of the original insert.
func (c *DatabaseClient) UpsertContent(ctx context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	if rec == nil {
		return nil, errors.New("nil content record")
	}
	table, err := contentTable(rec.Kind)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (id, product_title, product_description, product_image,
		                product_hash, payload, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (product_hash) DO UPDATE
		SET payload = EXCLUDED.payload,
		    source  = EXCLUDED.source,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`, table)

	stored := *rec
	err = c.db.QueryRowContext(ctx, q,
		rec.ID, rec.ProductTitle, rec.ProductDescription, rec.ProductImage,
		rec.ContentHash, rec.Payload, rec.Source,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (c *DatabaseClient) SavePromptResult(ctx context.Context, result *models.PromptResult) error {
	if result == nil {
		return errors.New("nil prompt result")
	}
	categories := result.Categories
	if categories == nil {
		categories = map[string]any{}
	}
	catJSON, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("marshal categories: %w", err)
	}

	const q = `
		INSERT INTO prompt_results (id, user_id, image_url, reply, generated_prompt, categories)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = c.db.ExecContext(ctx, q,
		result.ID, result.UserID, result.ImageURL, result.Reply, result.GeneratedPrompt, catJSON)
	return err
}

func (c *DatabaseClient) ListRecentPromptResults(ctx context.Context, userID string, limit int) ([]models.PromptResult, error) {
	const q = `
		SELECT id, user_id, image_url, reply, generated_prompt, categories, created_at
		FROM prompt_results
		WHERE user_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	// Legacy rows were written without a signed-in user; keep them visible.
	rows, err := c.db.QueryContext(ctx, q, []string{userID, "guest"}, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.PromptResult
	for rows.Next() {
		var r models.PromptResult
		var imageURL, reply, prompt sql.NullString
		var catJSON []byte
		if err := rows.Scan(&r.ID, &r.UserID, &imageURL, &reply, &prompt, &catJSON, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.ImageURL, r.Reply, r.GeneratedPrompt = imageURL.String, reply.String, prompt.String
		if len(catJSON) > 0 {
			if err := json.Unmarshal(catJSON, &r.Categories); err != nil {
				return nil, fmt.Errorf("unmarshal categories: %w", err)
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (c *DatabaseClient) CreateModelImage(ctx context.Context, img *models.ModelImage) error {
	if img == nil {
		return errors.New("nil model image")
	}
	const q = `INSERT INTO model_images (id, user_id, image_url) VALUES ($1, $2, $3)`
	_, err := c.db.ExecContext(ctx, q, img.ID, img.UserID, img.ImageURL)
	return err
}

func (c *DatabaseClient) ListRecentModelImages(ctx context.Context, userID string, limit int) ([]models.ModelImage, error) {
	const q = `
		SELECT id, user_id, image_url, created_at
		FROM model_images
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []models.ModelImage
	for rows.Next() {
		var img models.ModelImage
		if err := rows.Scan(&img.ID, &img.UserID, &img.ImageURL, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

func (c *DatabaseClient) GetCompanyInfo(ctx context.Context, userID string) (*models.CompanyInfo, error) {
	const q = `
		SELECT user_id, name, phone, email, address, updated_at
		FROM company_info WHERE user_id = $1
	`
	var info models.CompanyInfo
	err := c.db.QueryRowContext(ctx, q, userID).Scan(
		&info.UserID, &info.Name, &info.Phone, &info.Email, &info.Address, &info.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *DatabaseClient) UpsertCompanyInfo(ctx context.Context, info *models.CompanyInfo) error {
	if info == nil {
		return errors.New("nil company info")
	}
	const q = `
		INSERT INTO company_info (user_id, name, phone, email, address)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE
		SET name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    email = EXCLUDED.email,
		    address = EXCLUDED.address,
		    updated_at = now()
	`
	_, err := c.db.ExecContext(ctx, q, info.UserID, info.Name, info.Phone, info.Email, info.Address)
	return err
}
