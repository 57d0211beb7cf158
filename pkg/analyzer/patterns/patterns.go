// Package patterns implements the rule-based analyzer. Rules are YAML
// documents of named regular expressions with severity, category and
// threat tags; a default set covering common MCP tool abuse patterns is
// embedded in the binary and can be replaced with a rule file.
package patterns

import (
	"context"
	_ "embed"
	"strings"

	"github.com/mcpsentry/mcpsentry/pkg/analyzer"
)

//go:embed rules/default.yaml
var defaultRules []byte

// Name is the analyzer's registration name.
const Name = "patterns"

// Analyzer matches tool metadata against a compiled rule set. It runs
// entirely offline and never returns an error from Analyze.
type Analyzer struct {
	rules *RuleSet
}

// New returns an analyzer using the embedded default rules.
func New() *Analyzer {
	rs, err := ParseRules(defaultRules)
	if err != nil {
		// Embedded rules are validated by tests; a parse failure here
		// means the binary itself is broken.
		panic("patterns: embedded default rules: " + err.Error())
	}
	return &Analyzer{rules: rs}
}

// NewWithRules returns an analyzer using a caller-supplied rule set.
func NewWithRules(rs *RuleSet) *Analyzer {
	return &Analyzer{rules: rs}
}

// Name implements analyzer.Analyzer.
func (a *Analyzer) Name() string { return Name }

// Analyze matches every rule against the tool's name, description and
// schema. Each matching rule yields one finding.
func (a *Analyzer) Analyze(_ context.Context, tool analyzer.Tool) (*analyzer.RawReport, error) {
	var haystack strings.Builder
	haystack.WriteString(tool.Name)
	haystack.WriteByte('\n')
	haystack.WriteString(tool.Description)
	if len(tool.Schema) > 0 {
		haystack.WriteByte('\n')
		haystack.Write(tool.Schema)
	}
	text := haystack.String()

	var findings []analyzer.RawFinding
	for i := range a.rules.Rules {
		r := &a.rules.Rules[i]
		if !r.re.MatchString(text) {
			continue
		}
		findings = append(findings, analyzer.RawFinding{
			Severity:    r.Severity,
			Category:    r.Category,
			Description: r.Description,
			ThreatNames: append([]string(nil), r.ThreatNames...),
		})
	}

	safe := len(findings) == 0
	return &analyzer.RawReport{IsSafe: &safe, Findings: findings}, nil
}
