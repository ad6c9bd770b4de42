package osutil

import (
	"os/exec"

	"github.com/pkg/errors"
)

// ErrNotInstalled is returned by LookBinary when a tool is missing from PATH.
var ErrNotInstalled = errors.New("not installed")

// LookBinary resolves name on PATH.
func LookBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Wrapf(ErrNotInstalled, "%s", name)
	}
	return path, nil
}
