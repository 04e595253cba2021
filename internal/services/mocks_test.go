package services

import (
	"context"
	"fmt"
	"time"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
)

// mockStore is an in-memory core.DbClient that records calls.
type mockStore struct {
	records       map[string]*models.ContentRecord
	promptResults []models.PromptResult
	modelImages   []models.ModelImage
	company       map[string]*models.CompanyInfo

	findCalls   int
	insertCalls int
	upsertCalls int

	findErr   error
	insertErr error
	upsertErr error
	saveErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		records: make(map[string]*models.ContentRecord),
		company: make(map[string]*models.CompanyInfo),
	}
}

func contentKey(kind models.ContentKind, hash string) string {
	return fmt.Sprintf("%s/%s", kind, hash)
}

func (m *mockStore) FindContent(_ context.Context, kind models.ContentKind, hash string) (*models.ContentRecord, error) {
	m.findCalls++
	if m.findErr != nil {
		return nil, m.findErr
	}
	rec, ok := m.records[contentKey(kind, hash)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockStore) InsertContent(_ context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	m.insertCalls++
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	key := contentKey(rec.Kind, rec.ContentHash)
	if existing, ok := m.records[key]; ok {
		cp := *existing
		return &cp, nil
	}
	stored := *rec
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.records[key] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockStore) UpsertContent(_ context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	m.upsertCalls++
	if m.upsertErr != nil {
		return nil, m.upsertErr
	}
	key := contentKey(rec.Kind, rec.ContentHash)
	stored := *rec
	if existing, ok := m.records[key]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = time.Now()
	}
	stored.UpdatedAt = time.Now()
	m.records[key] = &stored
	cp := stored
	return &cp, nil
}

func (m *mockStore) SavePromptResult(_ context.Context, result *models.PromptResult) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.promptResults = append(m.promptResults, *result)
	return nil
}

func (m *mockStore) ListRecentPromptResults(_ context.Context, userID string, limit int) ([]models.PromptResult, error) {
	var out []models.PromptResult
	for _, r := range m.promptResults {
		if r.UserID == userID || r.UserID == "guest" {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) CreateModelImage(_ context.Context, img *models.ModelImage) error {
	m.modelImages = append(m.modelImages, *img)
	return nil
}

func (m *mockStore) ListRecentModelImages(_ context.Context, userID string, limit int) ([]models.ModelImage, error) {
	var out []models.ModelImage
	for _, img := range m.modelImages {
		if img.UserID == userID {
			out = append(out, img)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockStore) GetCompanyInfo(_ context.Context, userID string) (*models.CompanyInfo, error) {
	info, ok := m.company[userID]
	if !ok {
		return nil, nil
	}
	cp := *info
	return &cp, nil
}

func (m *mockStore) UpsertCompanyInfo(_ context.Context, info *models.CompanyInfo) error {
	cp := *info
	m.company[info.UserID] = &cp
	return nil
}

func (m *mockStore) Close() error { return nil }

var _ core.DbClient = (*mockStore)(nil)

// mockLLM returns canned output and counts invocations.
type mockLLM struct {
	output      string
	err         error
	calls       int
	visionCalls int

	lastSystem string
	lastPrompt string
	lastImages []core.ImageInput
}

func (m *mockLLM) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	m.calls++
	m.lastSystem = systemPrompt
	m.lastPrompt = userPrompt
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

func (m *mockLLM) GenerateWithImages(_ context.Context, prompt string, images []core.ImageInput) (string, error) {
	m.visionCalls++
	m.lastPrompt = prompt
	m.lastImages = images
	if m.err != nil {
		return "", m.err
	}
	return m.output, nil
}

var _ core.LLMProvider = (*mockLLM)(nil)

// mockStorage is an in-memory core.ObjectClient.
type mockStorage struct {
	uploads   map[string][]byte
	uploadErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{uploads: make(map[string][]byte)}
}

func (m *mockStorage) UploadFile(_ context.Context, bucket, key string, data []byte, _ string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads[key] = data
	return fmt.Sprintf("https://%s.example.com/%s", bucket, key), nil
}

func (m *mockStorage) DeleteFile(_ context.Context, _, key string) error {
	delete(m.uploads, key)
	return nil
}

func (m *mockStorage) GetFile(_ context.Context, _, key string) ([]byte, error) {
	data, ok := m.uploads[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return data, nil
}

var _ core.ObjectClient = (*mockStorage)(nil)

// mockSynth fakes the image synthesis provider.
type mockSynth struct {
	outputURL string
	err       error
	calls     int
	lastRefs  []core.ReferenceImage
	lastText  string
}

func (m *mockSynth) TextToImage(_ context.Context, promptText string, refs []core.ReferenceImage) (string, error) {
	m.calls++
	m.lastText = promptText
	m.lastRefs = refs
	if m.err != nil {
		return "", m.err
	}
	return m.outputURL, nil
}

var _ core.ImageSynthesizer = (*mockSynth)(nil)
