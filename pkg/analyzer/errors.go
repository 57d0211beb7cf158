package analyzer

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by analyzer backends. Callers match with
// errors.Is to decide between retrying and giving up.
var (
	// ErrMissingAPIKey means the backend requires a credential that was
	// not configured. Never retried.
	ErrMissingAPIKey = errors.New("analyzer: missing API key")

	// ErrAPIRejected means the backend rejected the credential (401/403).
	// Never retried.
	ErrAPIRejected = errors.New("analyzer: API key rejected")

	// ErrBackendUnavailable means the backend could not be reached or
	// returned a server error. Retried with backoff.
	ErrBackendUnavailable = errors.New("analyzer: backend unavailable")

	// ErrMalformedResponse means the backend replied with a payload that
	// could not be decoded as a report.
	ErrMalformedResponse = errors.New("analyzer: malformed response")
)

// Error wraps a backend failure with the analyzer and tool it occurred on.
type Error struct {
	Analyzer string
	Tool     string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyzer %q failed on tool %q: %v", e.Analyzer, e.Tool, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
