//go:build unix

package osutil

import (
	"context"
	"os/exec"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	runner := &ExecRunner{}

	stdout, stderr, err := runner.Run(context.Background(), "", "sh", "-c", "echo out; echo err >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", stdout)
	assert.Equal(t, "err\n", stderr)
}

func TestExecRunner_RunInDir(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := (&ExecRunner{}).Run(context.Background(), dir, "pwd")
	require.NoError(t, err)
	assert.Contains(t, stdout, dir[len(dir)-8:])
}

func TestExecRunner_NonZeroExit(t *testing.T) {
	_, stderr, err := (&ExecRunner{}).Run(context.Background(), "", "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Equal(t, "boom\n", stderr)

	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitCode())
}

func TestExecRunner_MissingBinary(t *testing.T) {
	_, _, err := (&ExecRunner{}).Run(context.Background(), "", "definitely-not-a-real-binary-skills4ai")
	require.Error(t, err)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
}
