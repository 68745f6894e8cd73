package diagram

import (
	"strings"

	apperrors "github.com/kbukum/diagramkit/errors"
)

// Keywords are the diagram declarations Precheck accepts, in the order
// they are listed in its error message.
var Keywords = []string{
	"graph", "flowchart", "sequenceDiagram", "classDiagram",
	"stateDiagram", "gantt", "pie", "journey", "gitgraph",
	"requirement", "mindmap", "timeline", "erDiagram",
}

// Precheck runs the structural pre-check on code. It returns a
// SYNTAX_ERROR when the code is blank, does not open with a known diagram
// keyword (case-insensitive) or has fewer than two non-blank lines.
func Precheck(code string) *apperrors.AppError {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return apperrors.Syntax("Empty diagram code")
	}

	if !HasKeyword(FirstLine(trimmed), Keywords) {
		return apperrors.Syntax("Invalid diagram type. Must start with: " + strings.Join(Keywords, ", "))
	}

	if countNonBlank(trimmed) < 2 {
		return apperrors.Syntax("Diagram must have at least one element or connection")
	}
	return nil
}

// FirstLine returns the first line of code, trimmed.
func FirstLine(code string) string {
	line, _, _ := strings.Cut(code, "\n")
	return strings.TrimSpace(line)
}

// HasKeyword reports whether line starts with one of keywords, ignoring case.
func HasKeyword(line string, keywords []string) bool {
	lower := strings.ToLower(line)
	for _, k := range keywords {
		if strings.HasPrefix(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func countNonBlank(code string) int {
	n := 0
	for _, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}
