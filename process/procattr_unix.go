//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own group and makes cancellation
// signal the whole group with SIGTERM.
func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGTERM)
	}
}
