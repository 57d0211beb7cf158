package analyzer

import (
	"context"
	"errors"
	"testing"
)

type stubAnalyzer struct {
	name   string
	report *RawReport
	err    error
	calls  int
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(_ context.Context, _ Tool) (*RawReport, error) {
	s.calls++
	return s.report, s.err
}

func boolPtr(b bool) *bool { return &b }

func TestEngineRegistrationOrder(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.Register(&stubAnalyzer{name: "patterns"})
	e.Register(&stubAnalyzer{name: "llm"})
	e.Register(&stubAnalyzer{name: "inspect"})

	want := []string{"patterns", "llm", "inspect"}
	got := e.Names()
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestEngineReRegisterKeepsPosition(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.Register(&stubAnalyzer{name: "patterns"})
	e.Register(&stubAnalyzer{name: "llm"})
	replacement := &stubAnalyzer{name: "patterns"}
	e.Register(replacement)

	if e.Count() != 2 {
		t.Errorf("Count() = %d, want 2", e.Count())
	}
	if got := e.Names(); got[0] != "patterns" {
		t.Errorf("Names()[0] = %q, want patterns", got[0])
	}

	if _, err := e.AnalyzeTool(context.Background(), Tool{Name: "t"}); err != nil {
		t.Fatalf("AnalyzeTool: %v", err)
	}
	if replacement.calls != 1 {
		t.Errorf("replacement calls = %d, want 1", replacement.calls)
	}
}

func TestAnalyzeToolCollectsReportsInOrder(t *testing.T) {
	t.Parallel()

	e := NewEngine()
	e.Register(&stubAnalyzer{name: "a", report: &RawReport{IsSafe: boolPtr(true)}})
	e.Register(&stubAnalyzer{name: "b", report: &RawReport{
		IsSafe:   boolPtr(false),
		Findings: []RawFinding{{Severity: "HIGH", Summary: "shell injection"}},
	}})

	reports, err := e.AnalyzeTool(context.Background(), Tool{Name: "exec"})
	if err != nil {
		t.Fatalf("AnalyzeTool: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("len(reports) = %d, want 2", len(reports))
	}
	if reports[0].Analyzer != "a" || reports[1].Analyzer != "b" {
		t.Errorf("report order = [%s %s], want [a b]", reports[0].Analyzer, reports[1].Analyzer)
	}
	if reports[1].Report.Safe() {
		t.Error("report b Safe() = true, want false")
	}
}

func TestAnalyzeToolFailureAborts(t *testing.T) {
	t.Parallel()

	backend := errors.New("connection refused")
	late := &stubAnalyzer{name: "late"}
	e := NewEngine()
	e.Register(&stubAnalyzer{name: "broken", err: backend})
	e.Register(late)

	reports, err := e.AnalyzeTool(context.Background(), Tool{Name: "exec"})
	if reports != nil {
		t.Errorf("reports = %v, want nil on failure", reports)
	}
	if !errors.Is(err, backend) {
		t.Fatalf("err = %v, want wrapped %v", err, backend)
	}
	var aerr *Error
	if !errors.As(err, &aerr) {
		t.Fatal("err is not *Error")
	}
	if aerr.Analyzer != "broken" || aerr.Tool != "exec" {
		t.Errorf("Error context = %q/%q, want broken/exec", aerr.Analyzer, aerr.Tool)
	}
	if late.calls != 0 {
		t.Errorf("later analyzer ran %d times after failure, want 0", late.calls)
	}
}

func TestRawReportSafeDefaults(t *testing.T) {
	t.Parallel()

	var nilReport *RawReport
	if !nilReport.Safe() {
		t.Error("nil report Safe() = false, want true")
	}
	if !(&RawReport{}).Safe() {
		t.Error("absent is_safe Safe() = false, want true")
	}
	if (&RawReport{IsSafe: boolPtr(false)}).Safe() {
		t.Error("explicit false Safe() = true, want false")
	}
}
