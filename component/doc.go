// Package component defines lifecycle-managed parts of the service.
//
// The workspace sweeper, the HTTP server and the headless browser engine
// implement Component and are started and stopped by bootstrap through a
// Registry.
package component
