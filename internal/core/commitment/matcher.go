package commitment

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher tests text against an ordered list of commitment rules.
// It is a pure text function with no side effects.
type Matcher struct {
	rules []compiledRule
}

type compiledRule struct {
	name     string
	patterns []*regexp.Regexp
}

// MatchResult reports whether text contains a commitment and which
// rules matched. Promise holds the sentence containing the first match,
// used as the obligation's promise summary.
type MatchResult struct {
	Matched bool
	Rules   []string
	Promise string
}

// NewMatcher builds a matcher from the built-in rule set.
func NewMatcher() *Matcher {
	m, err := NewMatcherFromRules(DefaultRules())
	if err != nil {
		// The built-in patterns are compile-checked by tests.
		panic(fmt.Sprintf("invalid built-in commitment rules: %v", err))
	}
	return m
}

// NewMatcherFromRules builds a matcher from an explicit rule list,
// preserving order. Patterns compile case-insensitively.
func NewMatcherFromRules(rules []Rule) (*Matcher, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		cr := compiledRule{name: rule.Name}
		for _, p := range rule.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("rule %s: invalid pattern %q: %w", rule.Name, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		compiled = append(compiled, cr)
	}
	return &Matcher{rules: compiled}, nil
}

// Match evaluates the rules in order and returns every rule that
// matches. Any match is sufficient; there is no confidence score.
func (m *Matcher) Match(text string) MatchResult {
	result := MatchResult{}
	for _, rule := range m.rules {
		for _, re := range rule.patterns {
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			result.Matched = true
			result.Rules = append(result.Rules, rule.name)
			if result.Promise == "" {
				result.Promise = sentenceAt(text, loc[0])
			}
			break
		}
	}
	return result
}

// sentenceAt extracts the sentence containing the byte offset.
func sentenceAt(text string, offset int) string {
	start := 0
	end := len(text)
	for i := offset; i > 0; i-- {
		if isSentenceBreak(text[i-1]) {
			start = i
			break
		}
	}
	for i := offset; i < len(text); i++ {
		if isSentenceBreak(text[i]) {
			end = i
			break
		}
	}
	return strings.TrimSpace(text[start:end])
}

func isSentenceBreak(c byte) bool {
	return c == '.' || c == '!' || c == '?' || c == '\n'
}
