package render

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
)

const (
	// DefaultWidth is the default image body width in pixels.
	DefaultWidth = 800
	// ViewportPadding is added to the body width to size the viewport.
	ViewportPadding = 100
	// ViewportHeight is the fixed viewport height in pixels.
	ViewportHeight = 2000
)

// Screenshotter captures url at the given viewport size into path. It
// returns the path it actually wrote, which may differ from path.
type Screenshotter interface {
	Screenshot(ctx context.Context, url, path string, width, height int) (string, error)
}

// HTMLConverter converts Markdown to an HTML fragment.
type HTMLConverter interface {
	ToHTML(ctx context.Context, content string) (string, error)
}

// ImageRequest describes one Markdown to PNG conversion.
type ImageRequest struct {
	Input  string
	Output string
	Width  int
}

// OutputPath returns Output, or the input path with a .png extension.
func (r ImageRequest) OutputPath() string {
	if r.Output != "" {
		return r.Output
	}
	return strings.TrimSuffix(r.Input, filepath.Ext(r.Input)) + ".png"
}

// ImageRenderer renders Markdown files to PNG images.
type ImageRenderer struct {
	Shooter   Screenshotter
	Converter HTMLConverter
	// Attempts and Interval bound the wait for the image to reach disk.
	Attempts int
	Interval time.Duration
}

// NewImageRenderer returns a renderer with the default polling budget.
func NewImageRenderer(shooter Screenshotter, converter HTMLConverter) *ImageRenderer {
	return &ImageRenderer{
		Shooter:   shooter,
		Converter: converter,
		Attempts:  10,
		Interval:  500 * time.Millisecond,
	}
}

// DataURI encodes an HTML document as a base64 data URI.
func DataURI(html string) string {
	return "data:text/html;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(html))
}

// TempImageName returns an ASCII-only file name for the intermediate screenshot.
func TempImageName() string {
	return "render_" + strings.ReplaceAll(uuid.NewString(), "-", "") + ".png"
}

// Render converts req.Input to a PNG and returns the final output path.
// Any existing file at the output path is replaced.
func (r *ImageRenderer) Render(ctx context.Context, req ImageRequest) (string, error) {
	log := logger.G(ctx).WithField("input", req.Input)

	if !osutil.Exists(req.Input) {
		return "", errors.Wrapf(ErrInputNotFound, "%s", req.Input)
	}
	if req.Width <= 0 {
		req.Width = DefaultWidth
	}
	output := req.OutputPath()

	content, err := os.ReadFile(req.Input)
	if err != nil {
		return "", errors.Wrap(err, "failed to read input file")
	}

	body, err := r.Converter.ToHTML(ctx, string(content))
	if err != nil {
		return "", err
	}

	outDir := filepath.Dir(output)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", errors.Wrap(err, "failed to create output directory")
	}

	tmpPath := filepath.Join(outDir, TempImageName())
	log.WithField("temp", tmpPath).Debug("capturing screenshot")

	reported, err := r.Shooter.Screenshot(ctx, DataURI(Page(body, req.Width)), tmpPath, req.Width+ViewportPadding, ViewportHeight)
	if err != nil {
		return "", errors.Wrapf(ErrRender, "%v", err)
	}

	var src string
	found := osutil.WaitForCondition(r.Attempts, r.Interval, func() bool {
		switch {
		case osutil.Exists(tmpPath):
			src = tmpPath
		case reported != "" && osutil.Exists(reported):
			src = reported
		default:
			return false
		}
		return true
	})
	if !found {
		return "", errors.Wrapf(ErrTempImageMissing, "expected at %s, renderer reported %q", tmpPath, reported)
	}

	if osutil.Exists(output) {
		if err := os.Remove(output); err != nil {
			return "", errors.Wrapf(err, "could not delete existing file %s, is it open?", output)
		}
	}

	if err := os.Rename(src, output); err != nil {
		return "", errors.Wrap(err, "failed to move rendered image into place")
	}

	log.WithField("output", output).Info("image rendered")
	return output, nil
}
