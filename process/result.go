package process

import "time"

// Result holds the output and status of a completed subprocess.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process was killed or never started.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
	// Truncated reports whether either stream exceeded MaxOutput.
	Truncated bool
	// TimedOut reports whether the context deadline ended the process.
	TimedOut bool
	// Canceled reports whether the context was canceled before its deadline.
	Canceled bool
}
