//go:build windows

package process

import "os/exec"

// setProcessGroup keeps the exec default on Windows: the child is killed on
// cancellation. There is no SIGTERM to send first.
func setProcessGroup(c *exec.Cmd) {
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return c.Process.Kill()
	}
}
