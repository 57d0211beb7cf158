package patterns

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Rule is a single named detection pattern. The regex is matched against
// a tool's name, description and input schema.
type Rule struct {
	// ID is the unique identifier for the rule
	ID string `yaml:"id"`
	// Pattern is the regular expression to match (case-insensitive)
	Pattern string `yaml:"pattern"`
	// Severity assigned to findings produced by this rule
	Severity string `yaml:"severity"`
	// Category groups related rules (e.g. "prompt-injection")
	Category string `yaml:"category"`
	// Description explains what the rule detects
	Description string `yaml:"description"`
	// ThreatNames lists the threats this rule maps to
	ThreatNames []string `yaml:"threat_names,omitempty"`
	// Enabled allows disabling a rule without removing it
	Enabled *bool `yaml:"enabled,omitempty"`

	re *regexp.Regexp
}

// enabled defaults to true when the field is absent.
func (r *Rule) enabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Compile builds the case-insensitive matcher for the rule.
func (r *Rule) Compile() error {
	re, err := regexp.Compile("(?i)" + r.Pattern)
	if err != nil {
		return fmt.Errorf("rule %q: invalid pattern: %w", r.ID, err)
	}
	r.re = re
	return nil
}

// RuleSet is an ordered collection of compiled rules.
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Compile validates and compiles every enabled rule. Disabled rules are
// dropped from the set.
func (rs *RuleSet) Compile() error {
	compiled := rs.Rules[:0]
	for i := range rs.Rules {
		r := rs.Rules[i]
		if !r.enabled() {
			continue
		}
		if r.ID == "" {
			return fmt.Errorf("rule at index %d has no id", i)
		}
		if err := r.Compile(); err != nil {
			return err
		}
		compiled = append(compiled, r)
	}
	rs.Rules = compiled
	return nil
}

// ParseRules decodes and compiles a YAML rule document.
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(rs.Rules) == 0 {
		return nil, fmt.Errorf("parse rules: no rules defined")
	}
	if err := rs.Compile(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadRules reads and compiles a rule file from disk.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	return ParseRules(data)
}
