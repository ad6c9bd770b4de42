package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixMarkdownInPlace(t *testing.T) {
	out := capturePresenter(t)
	input := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(input, []byte("Steps:\n- one\n- two\n"), 0o644))

	require.NoError(t, fixMarkdown(&bytes.Buffer{}, input, "", false))

	content, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "Steps:\n\n- one\n- two\n", string(content))
	assert.Contains(t, out.String(), "Fixed markdown saved to "+input)
}

func TestFixMarkdownToOutput(t *testing.T) {
	capturePresenter(t)
	dir := t.TempDir()
	input := filepath.Join(dir, "in.md")
	output := filepath.Join(dir, "out.md")
	require.NoError(t, os.WriteFile(input, []byte("Text\n1. first\n"), 0o644))

	require.NoError(t, fixMarkdown(&bytes.Buffer{}, input, output, false))

	original, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "Text\n1. first\n", string(original))

	fixed, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Text\n\n1. first\n", string(fixed))
}

func TestFixMarkdownDiff(t *testing.T) {
	capturePresenter(t)
	input := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(input, []byte("Steps:\n- one\n"), 0o644))

	var diff bytes.Buffer
	require.NoError(t, fixMarkdown(&diff, input, "", true))

	assert.Contains(t, diff.String(), "--- "+input)
	assert.Contains(t, diff.String(), "+++ "+input)
	assert.Contains(t, diff.String(), "+\n")

	content, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Equal(t, "Steps:\n- one\n", string(content), "diff mode must not write")
}

func TestFixMarkdownDiffNoChanges(t *testing.T) {
	input := filepath.Join(t.TempDir(), "clean.md")
	require.NoError(t, os.WriteFile(input, []byte("# Title\n\n- one\n"), 0o644))

	var diff bytes.Buffer
	require.NoError(t, fixMarkdown(&diff, input, "", true))
	assert.Empty(t, diff.String())
}

func TestFixMarkdownMissingInput(t *testing.T) {
	err := fixMarkdown(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.md"), "", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
}
