package render

import (
	"regexp"
	"strings"
)

// Rule rewrites engine diagnostics matching Pattern into Message. Message
// may reference capture groups as $1, ${name}.
type Rule struct {
	Pattern *regexp.Regexp
	Message string
}

// NewRule compiles pattern into a Rule. It panics on an invalid pattern.
func NewRule(pattern, message string) Rule {
	return Rule{Pattern: regexp.MustCompile(pattern), Message: message}
}

// DefaultRules returns the built-in rules for the Mermaid CLI.
func DefaultRules() []Rule {
	return []Rule{
		NewRule(`Parse error on line (\d+)`, "Syntax error on line $1"),
		NewRule(`Expecting (.+) but`, "Expected $1"),
		NewRule(`Unknown diagram type`, "Unknown diagram type. Check the diagram declaration."),
		NewRule(`ENOENT|executable file not found`, "Mermaid CLI not found. Please install @mermaid-js/mermaid-cli"),
		NewRule(`timed out|deadline exceeded|killed by context`, "Rendering timed out"),
	}
}

const unknownError = "Unknown error occurred"

// Normalizer turns raw engine diagnostics into user-facing messages.
type Normalizer struct {
	rules []Rule
}

// NewNormalizer creates a Normalizer. Rules are tried in order; the first
// match wins.
func NewNormalizer(rules []Rule) *Normalizer {
	return &Normalizer{rules: append([]Rule(nil), rules...)}
}

// Normalize returns the expanded message of the first matching rule, or
// the first line of text when nothing matches.
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return unknownError
	}
	for _, r := range n.rules {
		match := r.Pattern.FindStringSubmatchIndex(text)
		if match == nil {
			continue
		}
		return string(r.Pattern.ExpandString(nil, r.Message, text, match))
	}
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}
