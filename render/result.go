package render

import (
	"encoding/base64"

	"github.com/kbukum/diagramkit/diagram"
)

// RenderResult is a rendered artifact.
type RenderResult struct {
	Success     bool           `json:"success"`
	Data        string         `json:"data"`
	Format      diagram.Format `json:"format"`
	ContentType string         `json:"contentType"`
}

// Bytes decodes Data.
func (r *RenderResult) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(r.Data)
}

// ValidationResult is the outcome of a validation. It never carries the
// artifact.
type ValidationResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}
