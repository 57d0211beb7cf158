// Package analyzer defines the pluggable tool-analysis layer.
//
// The Analyzer interface abstracts over the concrete analysis backends
// (pattern rules, LLM review, hosted inspection API) so the scan
// orchestrator doesn't need to import each one directly. Analyzers return
// loosely-typed reports in whatever shape their backend produces; the
// normalize package is responsible for turning those into the strict
// result model.
package analyzer

import (
	"context"
)

// Tool describes a single MCP tool as advertised by a server's tool
// listing. Schema holds the JSON-encoded input schema and may be nil.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      []byte `json:"schema,omitempty"`
}

// RawFinding is a finding as reported by an analyzer backend, before
// normalization. Fields are deliberately loose: backends disagree on
// casing and on whether the text field is called description or summary,
// and some omit threat names entirely.
type RawFinding struct {
	Severity    string   `json:"severity"`
	Category    string   `json:"category,omitempty"`
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	ThreatNames []string `json:"threat_names,omitempty"`
}

// RawReport is an analyzer's verdict for one tool.
//
// IsSafe is a pointer because some backends omit it; an absent value is
// treated as safe downstream. Analyzers must report their own verdict
// rather than leaving callers to infer one from the findings list.
type RawReport struct {
	IsSafe   *bool        `json:"is_safe,omitempty"`
	Findings []RawFinding `json:"findings"`
}

// Safe reports the backend's verdict, defaulting to true when absent.
func (r *RawReport) Safe() bool {
	if r == nil || r.IsSafe == nil {
		return true
	}
	return *r.IsSafe
}

// Analyzer inspects a single tool and reports findings. A non-nil error
// means the backend could not produce a verdict at all (network failure,
// auth rejection); it does not mean the tool is unsafe.
type Analyzer interface {
	Name() string
	Analyze(ctx context.Context, tool Tool) (*RawReport, error)
}

// Engine holds registered analyzers and runs them against tools in
// registration order, so per-analyzer results are deterministic.
type Engine struct {
	analyzers map[string]Analyzer
	order     []string
}

// NewEngine creates an empty analyzer engine.
func NewEngine() *Engine {
	return &Engine{
		analyzers: make(map[string]Analyzer),
	}
}

// Register adds an analyzer. Re-registering a name replaces the previous
// analyzer but keeps its original position.
func (e *Engine) Register(a Analyzer) {
	name := a.Name()
	if _, exists := e.analyzers[name]; !exists {
		e.order = append(e.order, name)
	}
	e.analyzers[name] = a
}

// Names returns registered analyzer names in registration order.
func (e *Engine) Names() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Has reports whether an analyzer with the given name is registered.
func (e *Engine) Has(name string) bool {
	_, ok := e.analyzers[name]
	return ok
}

// Count returns the number of registered analyzers.
func (e *Engine) Count() int {
	return len(e.analyzers)
}

// ToolReport pairs an analyzer name with its raw verdict for one tool.
type ToolReport struct {
	Analyzer string
	Report   *RawReport
}

// AnalyzeTool runs every registered analyzer against the tool, in
// registration order. If any analyzer fails, the error is returned
// immediately and the tool has no verdict; the caller is expected to mark
// the enclosing server scan as failed rather than report a partial
// result as if it were complete.
func (e *Engine) AnalyzeTool(ctx context.Context, tool Tool) ([]ToolReport, error) {
	reports := make([]ToolReport, 0, len(e.order))
	for _, name := range e.order {
		report, err := e.analyzers[name].Analyze(ctx, tool)
		if err != nil {
			return nil, &Error{Analyzer: name, Tool: tool.Name, Err: err}
		}
		reports = append(reports, ToolReport{Analyzer: name, Report: report})
	}
	return reports, nil
}
