package render

import (
	"bytes"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/kinntalk/skills4ai/pkg/markdown"
)

// baseCSS is a GitHub-like stylesheet for rendered documents.
const baseCSS = `
body {
    font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Helvetica, Arial, sans-serif, "Apple Color Emoji", "Segoe UI Emoji";
    font-size: 16px;
    line-height: 1.5;
    word-wrap: break-word;
    color: #24292e;
    background-color: #ffffff;
    padding: 40px;
    max-width: 800px;
    margin: 0 auto;
}
h1, h2, h3, h4, h5, h6 { margin-top: 24px; margin-bottom: 16px; font-weight: 600; line-height: 1.25; }
h1 { font-size: 2em; border-bottom: 1px solid #eaecef; padding-bottom: 0.3em; }
h2 { font-size: 1.5em; border-bottom: 1px solid #eaecef; padding-bottom: 0.3em; }
h3 { font-size: 1.25em; }
p { margin-top: 0; margin-bottom: 16px; }
code {
    padding: 0.2em 0.4em;
    margin: 0;
    font-size: 85%;
    background-color: #f6f8fa;
    border-radius: 6px;
    font-family: SFMono-Regular, Consolas, "Liberation Mono", Menlo, monospace;
}
pre { padding: 16px; overflow: auto; font-size: 85%; line-height: 1.45; background-color: #f6f8fa; border-radius: 6px; margin-bottom: 16px; }
pre code { display: inline; padding: 0; margin: 0; overflow: visible; line-height: inherit; word-wrap: normal; background-color: transparent; border: 0; }
blockquote { padding: 0 1em; color: #6a737d; border-left: 0.25em solid #dfe2e5; margin: 0 0 16px 0; }
ul, ol { padding-left: 2em; margin-bottom: 16px; }
table { border-spacing: 0; border-collapse: collapse; margin-bottom: 16px; width: 100%; }
table th, table td { padding: 6px 13px; border: 1px solid #dfe2e5; }
table tr:nth-child(2n) { background-color: #f6f8fa; }
img { max-width: 100%; box-sizing: content-box; background-color: #fff; }
hr { height: 0.25em; padding: 0; margin: 24px 0; background-color: #e1e4e8; border: 0; }
`

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<style>
%s
%s
body { width: %dpx; max-width: none; }
</style>
</head>
<body>
%s
</body>
</html>`

// highlightCSS returns the chroma classes stylesheet matching the classes
// emitted by markdown.Converter.
func highlightCSS() string {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(markdown.HighlightStyle)); err != nil {
		return ""
	}
	return buf.String()
}

// Page wraps an HTML fragment in a complete styled document whose body is
// fixed to width pixels.
func Page(body string, width int) string {
	return fmt.Sprintf(pageTemplate, baseCSS, highlightCSS(), width, body)
}
