package finding

// Finding is a single security concern detected in a tool's metadata or
// behavior. Immutable once produced; content passes through the normalizer
// unchanged, only reshaped in structure.
type Finding struct {
	Severity    Severity `json:"severity"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description"`
	ThreatNames []string `json:"threat_names"`
}

// Status is the lifecycle state of a per-tool or per-server scan record.
type Status string

const (
	// StatusPending means the scan has not reached a terminal state yet.
	StatusPending Status = "pending"
	// StatusCompleted means the scan finished and produced results.
	StatusCompleted Status = "completed"
	// StatusFailed means the scan aborted with an error.
	StatusFailed Status = "failed"
	// StatusSkipped means the server was excluded (unsupported transport).
	StatusSkipped Status = "skipped"
)

// Terminal reports whether s is a final state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusSkipped
}

// AnalyzerVerdict is one analyzer's sub-verdict for a single tool,
// retained for traceability alongside the merged finding list.
type AnalyzerVerdict struct {
	IsSafe        bool `json:"is_safe"`
	FindingsCount int  `json:"findings_count"`
}

// ToolScanResult is the terminal outcome of scanning one tool: the tool's
// identity, the normalized findings from every analyzer that ran, and the
// safety verdict as delegated by the analyzer engine (never recomputed from
// finding severities here).
type ToolScanResult struct {
	Name            string                     `json:"name"`
	Description     string                     `json:"description"`
	IsSafe          bool                       `json:"is_safe"`
	Status          Status                     `json:"status"`
	Findings        []Finding                  `json:"findings"`
	AnalyzerResults map[string]AnalyzerVerdict `json:"analyzer_results,omitempty"`
}

// ServerScanResult is the terminal outcome of one server's scan attempt.
// The orchestrator mutates it incrementally and finalizes it exactly once;
// after that it is treated as immutable.
type ServerScanResult struct {
	Name      string           `json:"name"`
	Transport string           `json:"server_type"`
	Status    Status           `json:"status"`
	Tools     []ToolScanResult `json:"tools"`
	Error     string           `json:"error,omitempty"`
}

// SafeToolCount returns how many tools in r carry a safe verdict.
func (r *ServerScanResult) SafeToolCount() int {
	n := 0
	for _, t := range r.Tools {
		if t.IsSafe {
			n++
		}
	}
	return n
}
