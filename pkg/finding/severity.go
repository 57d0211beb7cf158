package finding

import "strings"

// Severity represents the severity level of a security finding.
// All values are lowercase strings; analyzers that report uppercase or
// mixed-case severities are normalized through ParseSeverity.
type Severity string

const (
	// Critical represents confirmed malicious behavior (data exfiltration,
	// credential theft, prompt injection with tool invocation).
	Critical Severity = "critical"

	// High represents likely malicious or deceptive tool behavior.
	High Severity = "high"

	// Medium represents suspicious patterns requiring review.
	Medium Severity = "medium"

	// Low represents weak indicators with limited impact.
	Low Severity = "low"

	// Info represents informational findings with no direct security impact.
	Info Severity = "info"

	// Safe represents an explicit clean verdict from an analyzer.
	Safe Severity = "safe"
)

// IsValid reports whether s is a recognized severity level.
func (s Severity) IsValid() bool {
	switch s {
	case Critical, High, Medium, Low, Info, Safe:
		return true
	}
	return false
}

// Score returns a numeric score for sorting and comparison.
// Critical=6, High=5, Medium=4, Low=3, Info=2, Safe=1, Unknown=0.
func (s Severity) Score() int {
	switch s {
	case Critical:
		return 6
	case High:
		return 5
	case Medium:
		return 4
	case Low:
		return 3
	case Info:
		return 2
	case Safe:
		return 1
	default:
		return 0
	}
}

// Blocking reports whether s should fail a CI gate on its own.
func (s Severity) Blocking() bool {
	return s == Critical || s == High
}

// String returns the severity as a string.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity maps a raw severity string to a Severity, tolerating case
// and surrounding whitespace. The second return is false when the input is
// not a recognized level; callers decide the fallback (the normalizer
// defaults to Info rather than failing the scan).
func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if s.IsValid() {
		return s, true
	}
	return "", false
}
