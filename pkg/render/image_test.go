package render

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeShooter struct {
	url      string
	width    int
	height   int
	write    bool
	reported string
	err      error
}

func (f *fakeShooter) Screenshot(_ context.Context, url, path string, width, height int) (string, error) {
	f.url, f.width, f.height = url, width, height
	if f.err != nil {
		return "", f.err
	}
	if f.write {
		if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}
	return f.reported, nil
}

type staticConverter struct{}

func (staticConverter) ToHTML(_ context.Context, content string) (string, error) {
	return "<p>" + strings.TrimSpace(content) + "</p>", nil
}

func newTestRenderer(shooter Screenshotter) *ImageRenderer {
	r := NewImageRenderer(shooter, staticConverter{})
	r.Interval = time.Millisecond
	return r
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))
	return path
}

func TestImageRenderer_Render(t *testing.T) {
	input := writeInput(t)
	shooter := &fakeShooter{write: true}

	out, err := newTestRenderer(shooter).Render(context.Background(), ImageRequest{Input: input, Width: 640})
	require.NoError(t, err)

	assert.Equal(t, strings.TrimSuffix(input, ".md")+".png", out)
	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	assert.Equal(t, 740, shooter.width)
	assert.Equal(t, 2000, shooter.height)

	require.True(t, strings.HasPrefix(shooter.url, "data:text/html;charset=utf-8;base64,"))
	html, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(shooter.url, "data:text/html;charset=utf-8;base64,"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "<p>hello</p>")
	assert.Contains(t, string(html), "body { width: 640px; max-width: none; }")

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(input), "render_*.png"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestImageRenderer_ReplacesExistingOutput(t *testing.T) {
	input := writeInput(t)
	output := filepath.Join(t.TempDir(), "out", "card.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0o755))
	require.NoError(t, os.WriteFile(output, []byte("stale"), 0o644))

	out, err := newTestRenderer(&fakeShooter{write: true}).Render(context.Background(), ImageRequest{Input: input, Output: output})
	require.NoError(t, err)
	assert.Equal(t, output, out)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))
}

func TestImageRenderer_UsesReportedPath(t *testing.T) {
	input := writeInput(t)
	reported := filepath.Join(t.TempDir(), "elsewhere.png")
	require.NoError(t, os.WriteFile(reported, []byte("moved"), 0o644))

	out, err := newTestRenderer(&fakeShooter{reported: reported}).Render(context.Background(), ImageRequest{Input: input})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "moved", string(content))
}

func TestImageRenderer_DefaultWidth(t *testing.T) {
	shooter := &fakeShooter{write: true}
	_, err := newTestRenderer(shooter).Render(context.Background(), ImageRequest{Input: writeInput(t)})
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth+ViewportPadding, shooter.width)
}

func TestImageRenderer_Errors(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		_, err := newTestRenderer(&fakeShooter{}).Render(context.Background(), ImageRequest{Input: "/no/such/file.md"})
		assert.True(t, errors.Is(err, ErrInputNotFound))
	})

	t.Run("backend failure", func(t *testing.T) {
		_, err := newTestRenderer(&fakeShooter{err: errors.New("chrome crashed")}).Render(context.Background(), ImageRequest{Input: writeInput(t)})
		assert.True(t, errors.Is(err, ErrRender))
		assert.Contains(t, err.Error(), "chrome crashed")
	})

	t.Run("image never appears", func(t *testing.T) {
		r := newTestRenderer(&fakeShooter{})
		r.Attempts = 3
		_, err := r.Render(context.Background(), ImageRequest{Input: writeInput(t)})
		assert.True(t, errors.Is(err, ErrTempImageMissing))
		assert.Contains(t, err.Error(), "render_")
	})
}

func TestTempImageName(t *testing.T) {
	name := TempImageName()
	assert.Regexp(t, `^render_[0-9a-f]{32}\.png$`, name)
	assert.NotEqual(t, name, TempImageName())
}

func TestPageIncludesHighlightCSS(t *testing.T) {
	page := Page("<p>x</p>", 500)
	assert.Contains(t, page, ".chroma")
	assert.Contains(t, page, "<body>\n<p>x</p>\n</body>")
}
