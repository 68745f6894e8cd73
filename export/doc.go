// Package export applies quality presets on top of the render pipeline and
// packages the artifact for download: filename, size and metadata.
//
// Batch exports run sequentially and isolate failures per configuration.
package export
