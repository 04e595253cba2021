package services

import "fmt"

// ErrorKind is a stable machine-readable classification surfaced to API clients.
type ErrorKind string

const (
	ErrMissingRequiredFields ErrorKind = "missing_required_fields"
	ErrGenerationUpstream    ErrorKind = "generation_upstream_failure"
	ErrGenerationMalformed   ErrorKind = "generation_malformed"
	ErrPersistence           ErrorKind = "persistence_failure"
)

// ContentError carries the error kind across the service boundary so handlers
// can map it to a status code without string matching.
type ContentError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ContentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

func contentErr(kind ErrorKind, message string, err error) *ContentError {
	return &ContentError{Kind: kind, Message: message, Err: err}
}
