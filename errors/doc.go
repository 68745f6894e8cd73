// Package errors provides the unified error type of the render service.
// It maps the pipeline's failure taxonomy (input, syntax, engine, I/O,
// capacity, internal) onto error codes with HTTP status and retryable
// detection, and renders them as RFC 7807-style response bodies.
package errors
