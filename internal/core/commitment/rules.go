// Package commitment provides deterministic detection of commitment
// expressions in free text. Matching is boolean: any rule match is
// enough to treat the text as a commitment. Rules are intentionally
// broad; duplicate suppression downstream handles over-matching.
package commitment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is a named group of commitment patterns. Patterns are
// case-insensitive regular expressions. Rules live in data, not code,
// so pattern tuning does not require a rebuild.
type Rule struct {
	Name     string   `yaml:"name"`
	Patterns []string `yaml:"patterns"`
}

// defaultRules is the built-in ordered rule set. Evaluation order is
// the listed order; the first matching pattern names the rule.
var defaultRules = []Rule{
	{
		Name: "direct_intent",
		Patterns: []string{
			`\bi(?:'ll| will)\s+(?:check|update|follow up|handle|investigate|respond|look into|get back|reach out|circle back|confirm|verify|take care)\b`,
			`\bwill\s+(?:check|update|follow up|handle|investigate|respond|look into|get back)\b`,
		},
	},
	{
		Name: "acknowledgment",
		Patterns: []string{
			`\b(?:on it|i'm on it|will do|right away|taking a look|looking into it)\b`,
		},
	},
	{
		Name: "eta",
		Patterns: []string{
			`\beta\b`,
			`\bshould be (?:done|ready|fixed) by\b`,
		},
	},
	{
		Name: "time_bound",
		Patterns: []string{
			`\bby (?:tomorrow|tonight|eod|end of day|monday|tuesday|wednesday|thursday|friday)\b`,
			`\bby \d{1,2}(?::\d{2})?\s*[ap]m\b`,
			`\bwithin \d+ (?:minutes?|hours?|days?)\b`,
		},
	},
	{
		Name: "action_commitment",
		Patterns: []string{
			`\bi(?:'ll| will)\s+(?:send|share|post|ping|email|message|schedule|set up|write up)\b`,
			`\blet me\s+(?:check|look|verify|confirm|find out)\b`,
		},
	},
}

// DefaultRules returns a copy of the built-in rule set.
func DefaultRules() []Rule {
	rules := make([]Rule, len(defaultRules))
	copy(rules, defaultRules)
	return rules
}

// LoadRules reads an ordered rule set from a YAML file.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var doc struct {
		Rules []Rule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s contains no rules", path)
	}

	return doc.Rules, nil
}

// WriteDefaultRules writes the built-in rule set to a YAML file so it
// can be edited without a rebuild.
func WriteDefaultRules(path string) error {
	doc := struct {
		Rules []Rule `yaml:"rules"`
	}{Rules: DefaultRules()}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules file: %w", err)
	}
	return nil
}
