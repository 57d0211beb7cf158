package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
	"github.com/mcpsentry/mcpsentry/pkg/retry"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Endpoint = endpoint
	cfg.Retry = retry.Config{MaxAttempts: 3, Strategy: retry.Constant}
	cfg.Limiter = nil
	return cfg
}

func chatReply(content string) string {
	return `{"choices":[{"message":{"content":` + quote(content) + `}}]}`
}

func quote(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			out = append(out, '\\', '"')
		case '\\':
			out = append(out, '\\', '\\')
		case '\n':
			out = append(out, '\\', 'n')
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '"'))
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); !errors.Is(err, analyzer.ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestAnalyzeParsesVerdict(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, chatReply(`{"is_safe": false, "findings": [{"severity": "high", "category": "command-execution", "summary": "runs shell commands", "threat_names": ["Arbitrary Command Execution"]}]}`))
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := a.Analyze(context.Background(), analyzer.Tool{Name: "run", Description: "Runs commands"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if report.Safe() {
		t.Error("Safe() = true, want false")
	}
	if len(report.Findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(report.Findings))
	}
	f := report.Findings[0]
	if f.Severity != "high" || f.Summary != "runs shell commands" {
		t.Errorf("finding = %+v", f)
	}
}

func TestAnalyzeToleratesMarkdownFences(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("Here is my analysis:\n```json\n{\"is_safe\": true, \"findings\": []}\n```"))
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := a.Analyze(context.Background(), analyzer.Tool{Name: "ok"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !report.Safe() {
		t.Error("Safe() = false, want true")
	}
}

func TestAnalyzeRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, chatReply(`{"is_safe": true, "findings": []}`))
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	report, err := a.Analyze(context.Background(), analyzer.Tool{Name: "t"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !report.Safe() {
		t.Error("Safe() = false after retry success")
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("backend calls = %d, want 3", got)
	}
}

func TestAnalyzeAuthRejectionNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = a.Analyze(context.Background(), analyzer.Tool{Name: "t"})
	if !errors.Is(err, analyzer.ErrAPIRejected) {
		t.Fatalf("err = %v, want ErrAPIRejected", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("backend calls = %d, want 1", got)
	}
}

func TestAnalyzeMalformedReply(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("I cannot analyze this tool."))
	}))
	defer srv.Close()

	a, err := New(testConfig(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := a.Analyze(context.Background(), analyzer.Tool{Name: "t"}); !errors.Is(err, analyzer.ErrMalformedResponse) {
		t.Fatalf("err = %v, want ErrMalformedResponse", err)
	}
}

func TestParseVerdictEdgeCases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		wantErr bool
		safe    bool
	}{
		{"bare object", `{"is_safe": true, "findings": []}`, false, true},
		{"prose prefix", `Sure! {"is_safe": false, "findings": []}`, false, false},
		{"no braces", "no json here", true, false},
		{"unbalanced", "{", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			report, err := parseVerdict(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Error("parseVerdict returned nil error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict: %v", err)
			}
			if report.Safe() != tt.safe {
				t.Errorf("Safe() = %v, want %v", report.Safe(), tt.safe)
			}
		})
	}
}
