package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kinntalk/skills4ai/pkg/registry"
)

func writeSkillFolder(t *testing.T, root, name, extra string) {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "---\nname: " + name + "\ndescription: test skill\n" + extra + "---\n\n# " + name + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "SKILL.md"), []byte(content), 0o644))
}

func TestSyncRegistryDryRun(t *testing.T) {
	out := capturePresenter(t)
	root := t.TempDir()
	writeSkillFolder(t, root, "alpha", "")
	writeSkillFolder(t, root, "beta", "source: https://github.com/u/beta\n")

	var list bytes.Buffer
	require.NoError(t, syncRegistry(&list, root, true))

	assert.Contains(t, out.String(), "Dry run: Would sync 2 skills")
	assert.Equal(t, "  - alpha: local\n  - beta: https://github.com/u/beta\n", list.String())
	assert.NoFileExists(t, filepath.Join(root, "skills.json"))
}

func TestSyncRegistryWrites(t *testing.T) {
	out := capturePresenter(t)
	root := t.TempDir()
	writeSkillFolder(t, root, "alpha", "")

	require.NoError(t, syncRegistry(&bytes.Buffer{}, root, false))

	reg, err := registry.Load(filepath.Join(root, "skills.json"))
	require.NoError(t, err)
	require.Contains(t, reg.Skills, "alpha")
	assert.Equal(t, registry.SourceLocal, reg.Skills["alpha"].Source)
	assert.Contains(t, out.String(), "Added alpha (local)")
	assert.Contains(t, out.String(), "Synced 1 skills to skills.json")
}

func TestListScanned(t *testing.T) {
	capturePresenter(t)
	root := t.TempDir()
	writeSkillFolder(t, root, "alpha", "")
	require.NoError(t, registry.Upsert(filepath.Join(root, "skills.json"), "alpha", registry.Entry{
		Source:  "https://github.com/u/alpha.git",
		Version: "abcdef0123456",
	}))

	var table bytes.Buffer
	require.NoError(t, listScanned(&table, root))

	lines := bytes.Split(bytes.TrimSpace(table.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Regexp(t, `^alpha\s+https://github.com/u/alpha.git\s+abcdef0$`, string(lines[1]))
}
