package markdown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterToHTML(t *testing.T) {
	c := NewConverter()

	out, err := c.ToHTML(context.Background(), "# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\nline one\nline two\n")
	require.NoError(t, err)

	assert.Contains(t, out, `<h1 id="title">Title</h1>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
	assert.Contains(t, out, "line one<br />")
}

func TestConverterHighlightsCode(t *testing.T) {
	c := NewConverter()

	out, err := c.ToHTML(context.Background(), "```go\nfunc main() {}\n```\n")
	require.NoError(t, err)

	assert.Contains(t, out, `class="chroma"`)
	assert.NotContains(t, out, "style=")
}

func TestConverterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewConverter().ToHTML(ctx, "# x")
	assert.ErrorIs(t, err, context.Canceled)
}
