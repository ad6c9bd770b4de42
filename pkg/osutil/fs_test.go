package osutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestCopyDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "pdf-generation")
	writeFile(t, filepath.Join(src, "SKILL.md"), "---\nname: pdf-generation\n---\n", 0o644)
	writeFile(t, filepath.Join(src, "scripts", "generate_pdf.py"), "print('hi')\n", 0o755)
	require.NoError(t, os.MkdirAll(filepath.Join(src, "assets"), 0o755))

	dst := filepath.Join(t.TempDir(), "nested", "pdf-generation")
	require.NoError(t, CopyDirFilter(src, dst, nil))

	content, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "---\nname: pdf-generation\n---\n", string(content))
	assert.True(t, IsDir(filepath.Join(dst, "assets")))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dst, "scripts", "generate_pdf.py"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())
	}
}

func TestCopyDirOverwritesExistingFiles(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "SKILL.md"), "new", 0o644)

	dst := t.TempDir()
	writeFile(t, filepath.Join(dst, "SKILL.md"), "old content that is longer", 0o644)

	require.NoError(t, CopyDirFilter(src, dst, nil))

	content, err := os.ReadFile(filepath.Join(dst, "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}

func TestCopyDirFilter(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "SKILL.md"), "x", 0o644)
	writeFile(t, filepath.Join(src, ".git", "HEAD"), "ref", 0o644)
	writeFile(t, filepath.Join(src, "scripts", "cache.pyc"), "bin", 0o644)

	dst := filepath.Join(t.TempDir(), "out")
	err := CopyDirFilter(src, dst, func(rel string, info os.FileInfo) bool {
		return rel == ".git" || filepath.Ext(rel) == ".pyc"
	})
	require.NoError(t, err)

	assert.True(t, Exists(filepath.Join(dst, "SKILL.md")))
	assert.False(t, Exists(filepath.Join(dst, ".git")))
	assert.False(t, Exists(filepath.Join(dst, "scripts", "cache.pyc")))
	assert.True(t, IsDir(filepath.Join(dst, "scripts")))
}

func TestCopyDirRejectsFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, src, "x", 0o644)

	err := CopyDirFilter(src, filepath.Join(t.TempDir(), "out"), nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "is not a directory")
}

func TestRemoveAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "skill")
	writeFile(t, filepath.Join(dir, "scripts", "a.py"), "x", 0o644)

	require.NoError(t, RemoveAll(dir))
	assert.False(t, Exists(dir))

	// Removing a missing path is not an error.
	require.NoError(t, RemoveAll(dir))
}

func TestWaitForCondition(t *testing.T) {
	t.Run("succeeds after a few attempts", func(t *testing.T) {
		calls := 0
		ok := WaitForCondition(10, time.Millisecond, func() bool {
			calls++
			return calls == 3
		})
		assert.True(t, ok)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		ok := WaitForCondition(4, time.Millisecond, func() bool {
			calls++
			return false
		})
		assert.False(t, ok)
		assert.Equal(t, 4, calls)
	})

	t.Run("zero attempts still checks once", func(t *testing.T) {
		calls := 0
		WaitForCondition(0, time.Millisecond, func() bool {
			calls++
			return false
		})
		assert.Equal(t, 1, calls)
	})
}

func TestLookBinary(t *testing.T) {
	_, err := LookBinary("definitely-not-a-real-binary-skills4ai")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotInstalled))
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-skills4ai")
}
