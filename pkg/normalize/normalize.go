// Package normalize converts loose analyzer reports into the strict
// result model. Analyzer backends disagree on severity casing, on which
// field carries the finding text, and on whether threat names are present
// at all; the fallback policy here absorbs that drift so downstream
// aggregation and rendering can rely on the typed schema.
//
// The safety verdict is taken from the analyzers, never recomputed from
// the findings list: a backend may flag a tool unsafe without itemized
// findings, or report informational findings on a tool it considers safe.
package normalize

import (
	"log/slog"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
)

// Normalizer applies the fallback policy. The zero value uses
// slog.Default for drift warnings.
type Normalizer struct {
	logger *slog.Logger
}

// New returns a Normalizer logging to the given logger. A nil logger
// falls back to slog.Default.
func New(logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{logger: logger}
}

// Finding converts one raw finding.
//
// Fallbacks: an unparseable severity becomes info (and is logged), a
// missing description falls back to the summary field, and absent threat
// names become an empty non-nil slice.
func (n *Normalizer) Finding(analyzerName string, raw analyzer.RawFinding) finding.Finding {
	sev, ok := finding.ParseSeverity(raw.Severity)
	if !ok {
		n.logger.Warn("unrecognized severity, treating as info",
			"analyzer", analyzerName,
			"severity", raw.Severity)
		sev = finding.Info
	}

	desc := raw.Description
	if desc == "" {
		desc = raw.Summary
	}

	threats := raw.ThreatNames
	if threats == nil {
		threats = []string{}
	}

	return finding.Finding{
		Severity:    sev,
		Category:    raw.Category,
		Description: desc,
		ThreatNames: threats,
	}
}

// Tool folds per-analyzer reports into a single tool result. Findings
// from all analyzers are concatenated in report order; the tool is safe
// only if every analyzer said so.
func (n *Normalizer) Tool(tool analyzer.Tool, reports []analyzer.ToolReport) finding.ToolScanResult {
	result := finding.ToolScanResult{
		Name:            tool.Name,
		Description:     tool.Description,
		IsSafe:          true,
		Status:          finding.StatusCompleted,
		Findings:        []finding.Finding{},
		AnalyzerResults: make(map[string]finding.AnalyzerVerdict, len(reports)),
	}

	for _, tr := range reports {
		safe := tr.Report.Safe()
		var count int
		if tr.Report != nil {
			count = len(tr.Report.Findings)
			for _, raw := range tr.Report.Findings {
				result.Findings = append(result.Findings, n.Finding(tr.Analyzer, raw))
			}
		}
		result.AnalyzerResults[tr.Analyzer] = finding.AnalyzerVerdict{
			IsSafe:        safe,
			FindingsCount: count,
		}
		if !safe {
			result.IsSafe = false
		}
	}
	return result
}
