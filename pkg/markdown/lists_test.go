package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixLists(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "list after colon",
			input:    "Steps:\n- one\n- two",
			expected: "Steps:\n\n- one\n- two",
		},
		{
			name:     "list after plain paragraph",
			input:    "Some text\n1. first\n2. second",
			expected: "Some text\n\n1. first\n2. second",
		},
		{
			name:     "list after heading",
			input:    "## Title\n* item",
			expected: "## Title\n\n* item",
		},
		{
			name:     "already separated",
			input:    "Steps:\n\n- one",
			expected: "Steps:\n\n- one",
		},
		{
			name:     "consecutive items untouched",
			input:    "- a\n- b\n+ c",
			expected: "- a\n- b\n+ c",
		},
		{
			name:     "list item ending with colon",
			input:    "- group:\n- next",
			expected: "- group:\n\n- next",
		},
		{
			name:     "nested items are not separated",
			input:    "Text\n  - nested",
			expected: "Text\n  - nested",
		},
		{
			name:     "first line list",
			input:    "- first\ntext",
			expected: "- first\ntext",
		},
		{
			name:     "marker without space is not a list",
			input:    "Text\n-not a list",
			expected: "Text\n-not a list",
		},
		{
			name:     "trailing newline preserved",
			input:    "Intro:\n- a\n",
			expected: "Intro:\n\n- a\n",
		},
		{
			name:     "colon followed by spaces",
			input:    "Intro:   \n- a",
			expected: "Intro:   \n\n- a",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FixLists(tt.input))
		})
	}
}

func TestFixListsIdempotent(t *testing.T) {
	inputs := []string{
		"Steps:\n- one\n- two\nAfter\n1. x\n  - y\n",
		"# H\n- a\n\n- b\nText:\n* c\n+ d\n10. e",
		"- group:\n- next:\n- last",
		"\n\n- a\nb\n- c\n",
		"plain text only",
	}

	for _, in := range inputs {
		once := FixLists(in)
		assert.Equal(t, once, FixLists(once), "input %q", in)
	}
}

func TestFixListsInsertsExactlyOneBlankLine(t *testing.T) {
	out := FixLists("Requirements:\n- go\n- git")
	assert.Equal(t, 1, strings.Count(out, "\n\n"))
	assert.NotContains(t, out, "\n\n\n")
}

func TestIsListItem(t *testing.T) {
	assert.True(t, IsListItem("- a"))
	assert.True(t, IsListItem("   12. a"))
	assert.True(t, IsListItem("+\titem"))
	assert.False(t, IsListItem("-a"))
	assert.False(t, IsListItem("1) a"))
	assert.False(t, IsListItem("text"))
}
