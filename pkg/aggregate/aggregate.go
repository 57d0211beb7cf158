// Package aggregate folds terminal per-server scan results into running
// summary counters. The fold is a pure function over Summary values with
// no ordering dependency between servers, so concurrent scans can fan in
// safely as long as each result is folded exactly once.
package aggregate

import (
	"github.com/mcpsentry/mcpsentry/pkg/finding"
)

// Histogram counts findings by severity. Safe findings are not counted;
// a safe verdict is the absence of a finding, not a finding itself.
type Histogram struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

// add increments the bucket for sev. Unvalidated severities land in the
// info bucket, matching the normalizer's fallback.
func (h Histogram) add(sev finding.Severity) Histogram {
	switch sev {
	case finding.Critical:
		h.Critical++
	case finding.High:
		h.High++
	case finding.Medium:
		h.Medium++
	case finding.Low:
		h.Low++
	default:
		h.Info++
	}
	return h
}

// Summary holds the run's counters. The zero value is the identity of
// Fold. Counters are never decremented.
type Summary struct {
	TotalServers   int `json:"total_servers"`
	ScannedServers int `json:"scanned_servers"`
	FailedServers  int `json:"failed_servers"`
	SkippedServers int `json:"skipped_servers"`

	TotalTools  int `json:"total_tools"`
	SafeTools   int `json:"safe_tools"`
	UnsafeTools int `json:"unsafe_tools"`

	TotalFindings int       `json:"total_findings"`
	Severities    Histogram `json:"severity_counts"`
}

// Fold returns s with one terminal server result counted. It is
// commutative and associative over any set of results; callers must fold
// each result exactly once.
//
// Completed servers contribute tool and finding counters. Failed servers
// count only as failed. Skipped servers count only as skipped. Non-terminal
// results contribute nothing beyond the server total.
func Fold(s Summary, srv finding.ServerScanResult) Summary {
	s.TotalServers++

	switch srv.Status {
	case finding.StatusCompleted:
		s.ScannedServers++
	case finding.StatusFailed:
		s.FailedServers++
		return s
	case finding.StatusSkipped:
		s.SkippedServers++
		return s
	default:
		return s
	}

	for _, tool := range srv.Tools {
		s.TotalTools++
		if tool.IsSafe {
			s.SafeTools++
		} else {
			s.UnsafeTools++
		}
		for _, f := range tool.Findings {
			s.TotalFindings++
			s.Severities = s.Severities.add(f.Severity)
		}
	}
	return s
}

// FoldAll folds a slice of terminal results into a fresh Summary.
func FoldAll(results []finding.ServerScanResult) Summary {
	var s Summary
	for _, r := range results {
		s = Fold(s, r)
	}
	return s
}

// HasBlockingFindings reports whether any critical or high severity
// finding was recorded. CI callers use this for pass/fail semantics.
func (s Summary) HasBlockingFindings() bool {
	return s.Severities.Critical > 0 || s.Severities.High > 0
}
