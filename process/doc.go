// Package process runs external programs with a hard deadline.
//
// The child is started in its own process group. When the context expires
// the whole group receives SIGTERM, then SIGKILL after the grace period.
// Captured stdout and stderr are capped so a chatty child cannot exhaust
// memory.
package process
