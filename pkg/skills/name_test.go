package skills

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"data-analyzer", true},
		{"pdf2image", true},
		{"a", true},
		{strings.Repeat("a", 40), true},
		{strings.Repeat("a", 41), false},
		{"", false},
		{"Data-Analyzer", false},
		{"data_analyzer", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"has space", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrInvalidName), "got %v", err)
			}
		})
	}
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Data Analyzer", TitleCase("data-analyzer"))
	assert.Equal(t, "Foo Bar", TitleCase("foo-bar"))
	assert.Equal(t, "Pdf2image", TitleCase("pdf2image"))
}

func TestSpaced(t *testing.T) {
	assert.Equal(t, "foo bar", Spaced("foo-bar"))
	assert.Equal(t, "skill installer", Spaced("Skill-Installer"))
}
