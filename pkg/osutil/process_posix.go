//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup configures the command to run in its own process group
// so that git or pandoc children die with it when the context is cancelled.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
