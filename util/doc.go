// Package util holds small helpers for human-readable sizes and filename
// sanitizing.
package util
