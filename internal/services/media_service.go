package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
)

// MediaService handles merchant image uploads and Runway fitting-cut synthesis.
type MediaService struct {
	db         core.DbClient
	storage    core.ObjectClient
	synth      core.ImageSynthesizer
	bucket     string
	httpClient *http.Client
}

func NewMediaService(db core.DbClient, storage core.ObjectClient, synth core.ImageSynthesizer, bucket string) *MediaService {
	return &MediaService{
		db:         db,
		storage:    storage,
		synth:      synth,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// UploadImage stores the photo in object storage and records it for the
// merchant's recent-images sidebar.
func (s *MediaService) UploadImage(ctx context.Context, userID, filename, contentType string, data []byte) (*models.ModelImage, error) {
	imgID := uuid.NewString()
	key := s.objectKey(userID, imgID, filename)

	url, err := s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	img := &models.ModelImage{
		ID:       imgID,
		UserID:   userID,
		ImageURL: url,
	}
	if err := s.db.CreateModelImage(ctx, img); err != nil {
		return nil, fmt.Errorf("record image: %w", err)
	}
	return img, nil
}

// fittingPrompts maps a requested cut to its synthesis prompt. @model and
// @style refer to the tags on the reference images.
var fittingPrompts = map[string]string{
	"full-body": "@model wearing @style in a full-body catalog photo",
	"side-view": "@model wearing @style in a side profile view",
	"back-view": "@model wearing @style with back turned",
	"half-body": "@model wearing @style in a close-up half-body shot",
}

const defaultFittingPrompt = "@model wearing @style in a fashion scene"

// FittingCut composes a fitted product shot from tagged reference images. The
// generated output is re-hosted in our bucket; if re-hosting fails the provider
// URL is returned as-is since those links expire only after a while.
func (s *MediaService) FittingCut(ctx context.Context, cut string, refs []core.ReferenceImage) (string, error) {
	if cut == "" || len(refs) == 0 {
		return "", contentErr(ErrMissingRequiredFields, "cut and referenceImages are required", nil)
	}

	prompt, ok := fittingPrompts[cut]
	if !ok {
		prompt = defaultFittingPrompt
	}

	// The provider only accepts data URLs for inline references.
	inlined := make([]core.ReferenceImage, 0, len(refs))
	for _, ref := range refs {
		if strings.HasPrefix(ref.URI, "data:") {
			inlined = append(inlined, ref)
			continue
		}
		dataURL, err := s.toDataURL(ctx, ref.URI)
		if err != nil {
			return "", contentErr(ErrGenerationUpstream, "fetch reference image", err)
		}
		inlined = append(inlined, core.ReferenceImage{URI: dataURL, Tag: ref.Tag})
	}

	outputURL, err := s.synth.TextToImage(ctx, prompt, inlined)
	if err != nil {
		return "", contentErr(ErrGenerationUpstream, "image synthesis failed", err)
	}

	hosted, err := s.rehost(ctx, outputURL, cut)
	if err != nil {
		log.Printf("WARN: rehost fitted image failed, returning provider url: %v", err)
		return outputURL, nil
	}
	return hosted, nil
}

func (s *MediaService) toDataURL(ctx context.Context, url string) (string, error) {
	data, contentType, err := s.download(ctx, url)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (s *MediaService) rehost(ctx context.Context, url, cut string) (string, error) {
	data, contentType, err := s.download(ctx, url)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("fitted-cuts/fitted-%s-%d.png", cut, time.Now().UnixMilli())
	if contentType == "" {
		contentType = "image/png"
	}
	return s.storage.UploadFile(ctx, s.bucket, key, data, contentType)
}

func (s *MediaService) download(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", err
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// objectKey creates a consistent storage key layout.
func (s *MediaService) objectKey(userID, imgID, filename string) string {
	filename = strings.TrimSpace(filename)
	filename = strings.ReplaceAll(filename, " ", "_")
	return path.Join("users", userID, "images", imgID, filename)
}
