package normalize

import (
	"io"
	"log/slog"
	"testing"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/finding"
)

func quiet() *Normalizer {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func boolPtr(b bool) *bool { return &b }

func TestFindingSeverityFallbacks(t *testing.T) {
	t.Parallel()

	n := quiet()
	tests := []struct {
		name string
		raw  string
		want finding.Severity
	}{
		{"lowercase", "high", finding.High},
		{"uppercase", "CRITICAL", finding.Critical},
		{"mixed case", "Medium", finding.Medium},
		{"padded", "  low ", finding.Low},
		{"unknown word", "catastrophic", finding.Info},
		{"empty", "", finding.Info},
		{"numeric", "9", finding.Info},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := n.Finding("x", analyzer.RawFinding{Severity: tt.raw})
			if got.Severity != tt.want {
				t.Errorf("severity %q normalized to %q, want %q", tt.raw, got.Severity, tt.want)
			}
		})
	}
}

func TestFindingDescriptionFallsBackToSummary(t *testing.T) {
	t.Parallel()

	n := quiet()
	got := n.Finding("llm", analyzer.RawFinding{Severity: "low", Summary: "from summary"})
	if got.Description != "from summary" {
		t.Errorf("Description = %q, want summary fallback", got.Description)
	}

	got = n.Finding("llm", analyzer.RawFinding{Severity: "low", Description: "primary", Summary: "secondary"})
	if got.Description != "primary" {
		t.Errorf("Description = %q, want primary field", got.Description)
	}
}

func TestFindingThreatNamesNeverNil(t *testing.T) {
	t.Parallel()

	got := quiet().Finding("x", analyzer.RawFinding{Severity: "info"})
	if got.ThreatNames == nil {
		t.Error("ThreatNames is nil, want empty slice")
	}
	if len(got.ThreatNames) != 0 {
		t.Errorf("ThreatNames = %v, want empty", got.ThreatNames)
	}
}

func TestToolVerdictDelegatedToAnalyzers(t *testing.T) {
	t.Parallel()

	n := quiet()
	tool := analyzer.Tool{Name: "exec", Description: "Run things"}

	// An analyzer may flag a tool unsafe with zero findings. The verdict
	// must come through unchanged.
	result := n.Tool(tool, []analyzer.ToolReport{
		{Analyzer: "inspect", Report: &analyzer.RawReport{IsSafe: boolPtr(false)}},
	})
	if result.IsSafe {
		t.Error("IsSafe = true, want analyzer's false verdict")
	}
	if len(result.Findings) != 0 {
		t.Errorf("findings = %d, want 0", len(result.Findings))
	}

	// Conversely, informational findings on a safe verdict stay safe.
	result = n.Tool(tool, []analyzer.ToolReport{
		{Analyzer: "patterns", Report: &analyzer.RawReport{
			IsSafe:   boolPtr(true),
			Findings: []analyzer.RawFinding{{Severity: "info", Description: "note"}},
		}},
	})
	if !result.IsSafe {
		t.Error("IsSafe = false despite safe verdict")
	}
	if len(result.Findings) != 1 {
		t.Errorf("findings = %d, want 1", len(result.Findings))
	}
}

func TestToolMissingVerdictMeansSafe(t *testing.T) {
	t.Parallel()

	result := quiet().Tool(analyzer.Tool{Name: "t"}, []analyzer.ToolReport{
		{Analyzer: "inspect", Report: &analyzer.RawReport{}},
	})
	if !result.IsSafe {
		t.Error("absent is_safe treated as unsafe")
	}
	if v := result.AnalyzerResults["inspect"]; !v.IsSafe || v.FindingsCount != 0 {
		t.Errorf("verdict = %+v, want safe with 0 findings", v)
	}
}

func TestToolCombinesAnalyzers(t *testing.T) {
	t.Parallel()

	n := quiet()
	result := n.Tool(analyzer.Tool{Name: "mixed", Description: "d"}, []analyzer.ToolReport{
		{Analyzer: "patterns", Report: &analyzer.RawReport{
			IsSafe:   boolPtr(true),
			Findings: []analyzer.RawFinding{},
		}},
		{Analyzer: "llm", Report: &analyzer.RawReport{
			IsSafe: boolPtr(false),
			Findings: []analyzer.RawFinding{
				{Severity: "HIGH", Summary: "first"},
				{Severity: "medium", Description: "second"},
			},
		}},
	})

	if result.IsSafe {
		t.Error("IsSafe = true, want false when any analyzer flags")
	}
	if result.Status != finding.StatusCompleted {
		t.Errorf("Status = %q, want completed", result.Status)
	}
	if len(result.Findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(result.Findings))
	}
	if result.Findings[0].Severity != finding.High || result.Findings[0].Description != "first" {
		t.Errorf("first finding = %+v", result.Findings[0])
	}
	if len(result.AnalyzerResults) != 2 {
		t.Fatalf("AnalyzerResults = %d entries, want 2", len(result.AnalyzerResults))
	}
	if v := result.AnalyzerResults["llm"]; v.IsSafe || v.FindingsCount != 2 {
		t.Errorf("llm verdict = %+v", v)
	}
	if v := result.AnalyzerResults["patterns"]; !v.IsSafe || v.FindingsCount != 0 {
		t.Errorf("patterns verdict = %+v", v)
	}
}
