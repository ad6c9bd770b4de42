// Package render turns Markdown files into PNG images (headless Chrome via
// go-rod) and PDF documents (pandoc with xelatex).
package render

import "github.com/pkg/errors"

var (
	// ErrInputNotFound is returned when the Markdown input does not exist.
	ErrInputNotFound = errors.New("input file not found")
	// ErrRender wraps screenshot backend failures.
	ErrRender = errors.New("failed to render image")
	// ErrTempImageMissing is returned when the renderer reported success but
	// no image appeared on disk within the polling budget.
	ErrTempImageMissing = errors.New("temporary image file not found")
	// ErrPandocNotInstalled is returned when pandoc is not on PATH.
	ErrPandocNotInstalled = errors.New("pandoc not found")
	// ErrPandocFailed is returned when pandoc exits non-zero.
	ErrPandocFailed = errors.New("pandoc failed")
	// ErrUnknownTheme is returned for a theme missing from Themes.
	ErrUnknownTheme = errors.New("unknown theme")
)
