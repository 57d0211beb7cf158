// Package duration provides canonical time constants for the entire codebase.
// This is the single source of truth for all time-based configuration:
// reference a named constant instead of hardcoding time.Duration values.
package duration

import "time"

// Session establishment and tool enumeration.
const (
	// Connect bounds transport connection and MCP handshake (20s).
	Connect = 20 * time.Second

	// ListTools bounds a single tool enumeration round trip (30s).
	ListTools = 30 * time.Second

	// ServerScan bounds one server's full scan including analysis (5min).
	ServerScan = 5 * time.Minute
)

// External analyzer calls.
const (
	// AnalyzerHTTP is the request timeout for analyzer API calls,
	// sized for LLM completions (60s).
	AnalyzerHTTP = 60 * time.Second

	// AnalyzerRetryBase is the initial backoff between analyzer
	// retries (1s).
	AnalyzerRetryBase = 1 * time.Second

	// AnalyzerRetryMax caps a single analyzer retry delay (15s).
	AnalyzerRetryMax = 15 * time.Second
)

// Shutdown and telemetry.
const (
	// Shutdown is the graceful drain window on interrupt (10s).
	Shutdown = 10 * time.Second

	// TelemetryConnect bounds OTLP exporter connection setup (10s).
	TelemetryConnect = 10 * time.Second

	// TelemetryFlush bounds the final span flush on exit (5s).
	TelemetryFlush = 5 * time.Second
)
