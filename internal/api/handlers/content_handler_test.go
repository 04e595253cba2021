package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-dev/pagecraft/internal/core"
	"github.com/hanbit-dev/pagecraft/internal/models"
	"github.com/hanbit-dev/pagecraft/internal/services"
)

// stubStore implements core.DbClient with just enough behavior for the
// content pipeline; the sidebar/media methods are unused here.
type stubStore struct {
	records map[string]*models.ContentRecord
	findErr error
}

func newStubStore() *stubStore {
	return &stubStore{records: make(map[string]*models.ContentRecord)}
}

func key(kind models.ContentKind, hash string) string { return string(kind) + "/" + hash }

func (s *stubStore) FindContent(_ context.Context, kind models.ContentKind, hash string) (*models.ContentRecord, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	rec, ok := s.records[key(kind, hash)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (s *stubStore) InsertContent(_ context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	k := key(rec.Kind, rec.ContentHash)
	if existing, ok := s.records[k]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *rec
	s.records[k] = &cp
	out := cp
	return &out, nil
}

func (s *stubStore) UpsertContent(_ context.Context, rec *models.ContentRecord) (*models.ContentRecord, error) {
	cp := *rec
	s.records[key(rec.Kind, rec.ContentHash)] = &cp
	out := cp
	return &out, nil
}

func (s *stubStore) SavePromptResult(context.Context, *models.PromptResult) error { return nil }
func (s *stubStore) ListRecentPromptResults(context.Context, string, int) ([]models.PromptResult, error) {
	return nil, nil
}
func (s *stubStore) CreateModelImage(context.Context, *models.ModelImage) error { return nil }
func (s *stubStore) ListRecentModelImages(context.Context, string, int) ([]models.ModelImage, error) {
	return nil, nil
}
func (s *stubStore) GetCompanyInfo(context.Context, string) (*models.CompanyInfo, error) {
	return nil, nil
}
func (s *stubStore) UpsertCompanyInfo(context.Context, *models.CompanyInfo) error { return nil }
func (s *stubStore) Close() error                                                 { return nil }

var _ core.DbClient = (*stubStore)(nil)

type stubLLM struct {
	output string
	err    error
	calls  int
}

func (s *stubLLM) Generate(context.Context, string, string) (string, error) {
	s.calls++
	return s.output, s.err
}

func (s *stubLLM) GenerateWithImages(context.Context, string, []core.ImageInput) (string, error) {
	return s.output, s.err
}

var _ core.LLMProvider = (*stubLLM)(nil)

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestGenerateQnAColdAndWarm(t *testing.T) {
	store := newStubStore()
	gen := &stubLLM{output: "Q: Does it run small?\nA: Order your usual size."}
	h := NewContentHandler(services.NewContentService(store, gen))

	body := map[string]string{"title": "Blue Tee", "description": "Cotton crewneck"}

	rr := postJSON(t, h.GenerateQnA, body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Payload string `json:"payload"`
		Source  string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "generated", resp.Source)
	assert.Equal(t, gen.output, resp.Payload)

	// Warm cache: same request, no second generation.
	rr = postJSON(t, h.GenerateQnA, body)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "generated", resp.Source)
	assert.Equal(t, 1, gen.calls)
}

func TestGenerateQnAUserOverride(t *testing.T) {
	store := newStubStore()
	gen := &stubLLM{output: "generated qna"}
	h := NewContentHandler(services.NewContentService(store, gen))

	save := map[string]string{
		"title":       "Blue Tee",
		"description": "Cotton crewneck",
		"text":        "Q: Can I machine wash it? A: Yes, cold cycle.",
	}
	rr := postJSON(t, h.GenerateQnA, save)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Payload string `json:"payload"`
		Source  string `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.Source)
	assert.Equal(t, 0, gen.calls)

	// Subsequent generate-path request returns the user text.
	rr = postJSON(t, h.GenerateQnA, map[string]string{"title": "Blue Tee", "description": "Cotton crewneck"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "user", resp.Source)
	assert.Equal(t, save["text"], resp.Payload)
	assert.Equal(t, 0, gen.calls)
}

func TestGenerateReviewsReturnsStructuredPayload(t *testing.T) {
	store := newStubStore()
	gen := &stubLLM{output: `[{"author":"Mina","rating":5,"content":"Perfect weekend tee"}]`}
	h := NewContentHandler(services.NewContentService(store, gen))

	rr := postJSON(t, h.GenerateReviews, map[string]string{"title": "Blue Tee", "description": "Cotton crewneck"})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Payload []models.ReviewEntry `json:"payload"`
		Source  string               `json:"source"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Payload, 1)
	assert.Equal(t, "Mina", resp.Payload[0].Author)
	assert.Equal(t, 5, resp.Payload[0].Rating)
}

func TestGenerateMissingFieldsIs400(t *testing.T) {
	h := NewContentHandler(services.NewContentService(newStubStore(), &stubLLM{output: "x"}))

	rr := postJSON(t, h.GeneratePolicy, map[string]string{"imageUrl": "https://cdn.example.com/x.png"})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(services.ErrMissingRequiredFields), resp["kind"])
}

func TestGenerateUpstreamFailureIs502(t *testing.T) {
	h := NewContentHandler(services.NewContentService(newStubStore(), &stubLLM{err: errors.New("timeout")}))

	rr := postJSON(t, h.GenerateQnA, map[string]string{"title": "Blue Tee", "description": "Cotton"})
	require.Equal(t, http.StatusBadGateway, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, string(services.ErrGenerationUpstream), resp["kind"])
}

func TestGeneratePersistenceFailureIs500(t *testing.T) {
	store := newStubStore()
	store.findErr = fmt.Errorf("db down")
	h := NewContentHandler(services.NewContentService(store, &stubLLM{output: "x"}))

	rr := postJSON(t, h.GenerateQnA, map[string]string{"title": "Blue Tee", "description": "Cotton"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestGenerateInvalidBodyIs400(t *testing.T) {
	h := NewContentHandler(services.NewContentService(newStubStore(), &stubLLM{}))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	h.GenerateQnA(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
