//go:build windows

package osutil

import (
	"os"
	"os/exec"
)

// SetProcessGroup only installs a kill-on-cancel hook on Windows; child
// processes of the command may outlive it.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
