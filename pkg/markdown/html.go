package markdown

import (
	"bytes"
	"context"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// HighlightStyle is the chroma style whose CSS accompanies highlighted code.
const HighlightStyle = "github"

// Converter turns Markdown into an HTML fragment.
type Converter struct {
	md goldmark.Markdown
}

// NewConverter returns a converter with tables, footnotes, definition
// lists, syntax highlighting and newline-to-<br> enabled.
func NewConverter() *Converter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			extension.DefinitionList,
			highlighting.NewHighlighting(
				highlighting.WithStyle(HighlightStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &Converter{md: md}
}

// ToHTML converts content to an HTML fragment (no <html> wrapper).
func (c *Converter) ToHTML(ctx context.Context, content string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.md.Convert([]byte(content), &buf); err != nil {
		return "", errors.Wrap(err, "failed to convert markdown to HTML")
	}
	return buf.String(), nil
}
