package main

import (
	"bytes"
	"testing"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

// capturePresenter routes the default presenter into a buffer for the
// duration of the test.
func capturePresenter(t *testing.T) *bytes.Buffer {
	t.Helper()
	original := presenter.Default()
	var out bytes.Buffer
	p := presenter.NewWithOptions(&out, &out, presenter.ColorNever)
	p.SetMessages(presenter.ASCIIMessages)
	presenter.SetDefault(p)
	t.Cleanup(func() { presenter.SetDefault(original) })
	return &out
}

// withConfig installs c as the loaded configuration for the duration of the test.
func withConfig(t *testing.T, c *config.Config) {
	t.Helper()
	original := cfg
	cfg = c
	t.Cleanup(func() { cfg = original })
}
