// Package renderer invokes the diagram rendering engine.
//
// A Renderer reads diagram source from Job.Input and writes the artifact
// to Job.Output. CLI runs the Mermaid CLI (mmdc) as a subprocess through
// the process package; Browser renders in a headless Chrome through
// mermaid.go. Neither classifies failures: they return an *EngineError
// carrying the raw diagnostic, and the render package normalizes it.
package renderer
