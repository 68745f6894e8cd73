// Package validation checks request payloads and configuration.
//
// Struct tags cover HTTP request DTOs and config sections:
//
//	type renderRequest struct {
//	    Width int `json:"width" validate:"omitempty,gt=0,lte=10000"`
//	}
//	err := validation.Validate(req)
//
// The fluent Validator covers checks that depend on runtime values:
//
//	err := validation.New().
//	    Positive("width", float64(opts.Width)).
//	    Positive("scale", opts.Scale).
//	    Validate()
package validation
