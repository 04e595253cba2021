package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanbit-dev/pagecraft/internal/core"
)

func TestUploadImageStoresAndRecords(t *testing.T) {
	store := newMockStore()
	storage := newMockStorage()
	svc := NewMediaService(store, storage, &mockSynth{}, "bucket")

	img, err := svc.UploadImage(context.Background(), "user-1", "look book.png", "image/png", []byte{1, 2, 3})
	require.NoError(t, err)

	assert.Contains(t, img.ImageURL, "users/user-1/images/")
	assert.Contains(t, img.ImageURL, "look_book.png", "spaces replaced in key")
	require.Len(t, store.modelImages, 1)
	assert.Equal(t, img.ImageURL, store.modelImages[0].ImageURL)
	assert.Len(t, storage.uploads, 1)
}

func TestUploadImageStorageFailure(t *testing.T) {
	storage := newMockStorage()
	storage.uploadErr = errors.New("bucket gone")
	svc := NewMediaService(newMockStore(), storage, &mockSynth{}, "bucket")

	_, err := svc.UploadImage(context.Background(), "user-1", "a.png", "image/png", []byte{1})
	assert.Error(t, err)
}

func TestFittingCutRequiresInput(t *testing.T) {
	svc := NewMediaService(newMockStore(), newMockStorage(), &mockSynth{}, "bucket")

	_, err := svc.FittingCut(context.Background(), "", nil)
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrMissingRequiredFields, cerr.Kind)
}

func TestFittingCutInlinesURLReferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("reference-bytes"))
	}))
	t.Cleanup(srv.Close)

	synth := &mockSynth{outputURL: srv.URL + "/output.png"}
	storage := newMockStorage()
	svc := NewMediaService(newMockStore(), storage, synth, "bucket")

	refs := []core.ReferenceImage{
		{URI: srv.URL + "/model.png", Tag: "model"},
		{URI: "data:image/png;base64,aW5saW5l", Tag: "style"},
	}
	outputURL, err := svc.FittingCut(context.Background(), "full-body", refs)
	require.NoError(t, err)

	assert.Equal(t, 1, synth.calls)
	assert.Equal(t, "@model wearing @style in a full-body catalog photo", synth.lastText)
	require.Len(t, synth.lastRefs, 2)
	assert.True(t, strings.HasPrefix(synth.lastRefs[0].URI, "data:image/png;base64,"), "url reference converted to data url")
	assert.Equal(t, "data:image/png;base64,aW5saW5l", synth.lastRefs[1].URI, "data url passed through")

	// Output was re-hosted in our bucket.
	assert.Contains(t, outputURL, "bucket.example.com/fitted-cuts/")
}

func TestFittingCutUnknownCutUsesDefaultPrompt(t *testing.T) {
	synth := &mockSynth{outputURL: "https://provider.example.com/out.png"}
	svc := NewMediaService(newMockStore(), newMockStorage(), synth, "bucket")

	_, err := svc.FittingCut(context.Background(), "three-quarter", []core.ReferenceImage{{URI: "data:image/png;base64,eA=="}})
	require.NoError(t, err)
	assert.Equal(t, defaultFittingPrompt, synth.lastText)
}

func TestFittingCutSynthesisFailure(t *testing.T) {
	synth := &mockSynth{err: errors.New("task failed")}
	svc := NewMediaService(newMockStore(), newMockStorage(), synth, "bucket")

	_, err := svc.FittingCut(context.Background(), "full-body", []core.ReferenceImage{{URI: "data:image/png;base64,eA=="}})
	var cerr *ContentError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ErrGenerationUpstream, cerr.Kind)
}

func TestFittingCutFallsBackToProviderURLWhenRehostFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("generated"))
	}))
	t.Cleanup(srv.Close)

	synth := &mockSynth{outputURL: srv.URL + "/out.png"}
	storage := newMockStorage()
	storage.uploadErr = errors.New("bucket unavailable")
	svc := NewMediaService(newMockStore(), storage, synth, "bucket")

	outputURL, err := svc.FittingCut(context.Background(), "back-view", []core.ReferenceImage{{URI: "data:image/png;base64,eA=="}})
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/out.png", outputURL)
}
