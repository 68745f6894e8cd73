// Package diagram holds the render vocabulary shared by every component:
// formats, themes, quality presets and the immutable Catalog that lists
// which of them this process supports.
//
// The Catalog is built once from configuration and injected into the
// pipeline, the validator and the export service. Nothing in this package
// keeps mutable package state.
//
// Precheck is the cheap structural test run before any subprocess is
// spawned; it never parses the diagram language beyond its first keyword.
package diagram
