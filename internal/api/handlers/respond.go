package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hanbit-dev/pagecraft/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

// writeServiceError maps a typed service error to an HTTP status. Input
// problems are the client's to fix; everything else is on us or a provider.
func writeServiceError(w http.ResponseWriter, err error) {
	var cerr *services.ContentError
	if !errors.As(err, &cerr) {
		log.Printf("unhandled error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch cerr.Kind {
	case services.ErrMissingRequiredFields:
		status = http.StatusBadRequest
	case services.ErrGenerationUpstream, services.ErrGenerationMalformed:
		status = http.StatusBadGateway
	case services.ErrPersistence:
		status = http.StatusInternalServerError
	}

	log.Printf("request failed (%s): %v", cerr.Kind, err)
	writeJSON(w, status, map[string]string{
		"error": cerr.Message,
		"kind":  string(cerr.Kind),
	})
}
