package finding

import "errors"

// Sentinel errors for server-local scan failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrServerUnreachable indicates the server process could not be
	// spawned or the network endpoint could not be reached.
	ErrServerUnreachable = errors.New("finding: server unreachable")

	// ErrAuthRejected indicates the server rejected the presented
	// credentials (HTTP 401/403).
	ErrAuthRejected = errors.New("finding: authentication rejected")

	// ErrProtocol indicates a malformed handshake or tool enumeration
	// response from an otherwise reachable server.
	ErrProtocol = errors.New("finding: protocol error")

	// ErrUnsupportedTransport indicates a server declared a transport
	// kind no strategy handles. Recorded as skipped, never fatal.
	ErrUnsupportedTransport = errors.New("finding: unsupported transport")
)
