package process

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Run executes a subprocess and waits for it to complete.
// If the context ends, SIGTERM is sent first, then SIGKILL after GracePeriod.
// A non-nil Result is returned whenever the process was attempted.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, fmt.Errorf("process: binary is required")
	}

	gracePeriod := cmd.GracePeriod
	if gracePeriod == 0 {
		gracePeriod = 5 * time.Second
	}
	maxOutput := cmd.MaxOutput
	if maxOutput <= 0 {
		maxOutput = DefaultMaxOutput
	}

	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // dynamic args are the purpose of this package
	c.Dir = cmd.Dir
	c.Env = mergeEnv(cmd.Env)

	stdout := newCappedBuffer(maxOutput)
	stderr := newCappedBuffer(maxOutput)
	c.Stdout = stdout
	c.Stderr = stderr

	if cmd.Stdin != nil {
		c.Stdin = cmd.Stdin
	}

	setProcessGroup(c)
	c.WaitDelay = gracePeriod

	start := time.Now()
	err := c.Run()
	duration := time.Since(start)

	result := &Result{
		Stdout:    stdout.Bytes(),
		Stderr:    stderr.Bytes(),
		ExitCode:  c.ProcessState.ExitCode(),
		Duration:  duration,
		Truncated: stdout.truncated || stderr.truncated,
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.TimedOut = errors.Is(ctxErr, context.DeadlineExceeded)
			result.Canceled = !result.TimedOut
			result.ExitCode = -1
			return result, fmt.Errorf("process: killed by context: %w", ctxErr)
		}
		return result, fmt.Errorf("process: exit code %d: %w", result.ExitCode, err)
	}

	return result, nil
}

// mergeEnv merges additional env vars with the current environment.
func mergeEnv(extra []string) []string {
	if len(extra) == 0 {
		return nil // inherit parent env
	}
	env := os.Environ()
	return append(env, extra...)
}
