// Package markdown provides the Markdown text transforms used before
// rendering: list spacing repair and conversion to HTML.
package markdown

import (
	"regexp"
	"strings"
)

var listItemPattern = regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s`)

// IsListItem reports whether line starts a bullet or numbered list item.
func IsListItem(line string) bool {
	return listItemPattern.MatchString(line)
}

// FixLists inserts a blank line before top-level list items that directly
// follow a non-blank line which either ends with a colon or is not itself
// a list item. Pandoc and most renderers otherwise fold such lists into the
// preceding paragraph. FixLists is idempotent.
func FixLists(content string) string {
	lines := strings.Split(content, "\n")
	fixed := make([]string, 0, len(lines))

	for i, line := range lines {
		m := listItemPattern.FindStringSubmatch(line)
		if m != nil && len(m[1]) == 0 && i > 0 {
			prev := lines[i-1]
			if strings.TrimSpace(prev) != "" {
				endsWithColon := strings.HasSuffix(strings.TrimRightFunc(prev, isSpace), ":")
				if endsWithColon || !IsListItem(prev) {
					fixed = append(fixed, "")
				}
			}
		}
		fixed = append(fixed, line)
	}

	return strings.Join(fixed, "\n")
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\f' || r == '\v'
}
