package mcpconfig

import "errors"

// Sentinel errors for configuration loading.
// Callers should use errors.Is() to check for these.
var (
	// ErrNotFound indicates the registry document does not exist.
	ErrNotFound = errors.New("mcpconfig: config file not found")

	// ErrMalformed indicates the document is not well-formed JSON or
	// lacks the required "mcpServers" key.
	ErrMalformed = errors.New("mcpconfig: malformed config")
)
