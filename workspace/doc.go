// Package workspace manages the transient files that carry diagram source
// to the rendering engine and the artifact back.
//
// Names are unique per allocation, so concurrent requests never share a
// file and no locking is needed. Every request allocates through a Lease
// and defers its Release; the Sweeper removes whatever a crash left behind.
package workspace
