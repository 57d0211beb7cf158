package events

import (
	"github.com/mcpsentry/mcpsentry/pkg/aggregate"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
)

// StartEvent is emitted when a scan run begins, before any server is
// contacted.
type StartEvent struct {
	BaseEvent
	ConfigFile  string   `json:"config_file"`
	Servers     int      `json:"servers"`
	Analyzers   []string `json:"analyzers"`
	Concurrency int      `json:"concurrency"`
}

// ServerResultEvent is emitted once per server, when its scan reaches a
// terminal status.
type ServerResultEvent struct {
	BaseEvent
	Server    string         `json:"server"`
	Transport string         `json:"transport"`
	Status    finding.Status `json:"status"`
	Tools     int            `json:"tools"`
	Findings  int            `json:"findings"`
	Error     string         `json:"error,omitempty"`
}

// SummaryEvent carries the final folded counters for the run.
type SummaryEvent struct {
	BaseEvent
	Summary  aggregate.Summary `json:"summary"`
	Blocking bool              `json:"has_blocking_findings"`
}

// CompleteEvent is emitted after the result document has been written.
type CompleteEvent struct {
	BaseEvent
	OutputPath string  `json:"output_path,omitempty"`
	DurationMS float64 `json:"duration_ms"`
	ExitCode   int     `json:"exit_code"`
	ExitReason string  `json:"exit_reason"`
}
