// Package render is the render request pipeline.
//
// Pipeline.Render checks options against the catalog, takes a slot in the
// render bulkhead, leases an input and an output file from the workspace,
// runs the renderer and returns the artifact base64 encoded. Validator runs
// the same engine on a small SVG to decide whether source is valid.
//
// Every call releases its workspace lease before returning, on success,
// failure, timeout and panic alike. Engine diagnostics are rewritten into
// stable messages by a Normalizer.
package render
