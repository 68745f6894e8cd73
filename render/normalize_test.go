package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(DefaultRules())

	tests := []struct {
		in   string
		want string
	}{
		{"", "Unknown error occurred"},
		{"  \n ", "Unknown error occurred"},
		{"Error: Parse error on line 12:\n...", "Syntax error on line 12"},
		{"Expecting 'SEMI', 'NEWLINE', got 'EOF' but found", "Expected 'SEMI', 'NEWLINE', got 'EOF'"},
		{"UnknownDiagramError: Unknown diagram type detected", "Unknown diagram type. Check the diagram declaration."},
		{"spawn mmdc ENOENT", "Mermaid CLI not found. Please install @mermaid-js/mermaid-cli"},
		{`exec: "mmdc": executable file not found in $PATH`, "Mermaid CLI not found. Please install @mermaid-js/mermaid-cli"},
		{"process: killed by context: context deadline exceeded", "Rendering timed out"},
		{"  Something odd happened  \nstack line 1\nstack line 2", "Something odd happened"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, n.Normalize(tt.in), tt.in)
	}
}

func TestNormalize_FirstRuleWins(t *testing.T) {
	n := NewNormalizer([]Rule{
		NewRule(`line (\d+)`, "first $1"),
		NewRule(`Parse error`, "second"),
	})
	assert.Equal(t, "first 3", n.Normalize("Parse error on line 3"))
}

func TestNormalize_NamedGroups(t *testing.T) {
	n := NewNormalizer([]Rule{NewRule(`node (?P<id>\w+) missing`, "Missing node ${id}")})
	assert.Equal(t, "Missing node n1", n.Normalize("error: node n1 missing"))
}
