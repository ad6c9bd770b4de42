package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoFrontMatter is returned when SKILL.md does not start with a YAML block.
	ErrNoFrontMatter = errors.New("missing frontmatter")
	// ErrMissingName is returned when the front matter has no name.
	ErrMissingName = errors.New("skill name is required in frontmatter")
	// ErrMissingDescription is returned when the front matter has no description.
	ErrMissingDescription = errors.New("skill description is required in frontmatter")
)

// ParseFrontMatter extracts and decodes the YAML front matter of a SKILL.md.
// The raw map is returned alongside the typed view so callers can inspect
// keys the Metadata struct does not model.
func ParseFrontMatter(content []byte) (*Metadata, map[string]interface{}, error) {
	if !bytes.HasPrefix(content, []byte("---")) {
		return nil, nil, ErrNoFrontMatter
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, nil, errors.Wrap(err, "failed to parse markdown")
	}

	raw, err := meta.TryGet(pctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "invalid frontmatter")
	}
	if len(raw) == 0 {
		return nil, nil, ErrNoFrontMatter
	}

	var m Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &m,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, raw, errors.Wrap(err, "failed to decode frontmatter")
	}

	return &m, raw, nil
}

// Validate checks the mandatory fields.
func (m *Metadata) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrMissingName
	}
	if strings.TrimSpace(m.Description) == "" {
		return ErrMissingDescription
	}
	return nil
}

// SplitFrontMatter returns the YAML block between the leading "---" lines
// and the remaining body. ok is false when there is no closed block.
func SplitFrontMatter(content string) (block string, body string, ok bool) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(content, "---\n") {
		return "", content, false
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			block = strings.Join(lines[1:i], "\n")
			body = strings.TrimLeft(strings.Join(lines[i+1:], "\n"), "\n")
			return block, body, true
		}
	}
	return "", content, false
}

// RenderFrontMatter renders m as a SKILL.md front matter block, including
// both "---" delimiters and a trailing newline.
func RenderFrontMatter(m *Metadata) (string, error) {
	out, err := yaml.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "failed to render frontmatter")
	}
	return "---\n" + string(out) + "---\n", nil
}

// Load reads the skill at dir and requires valid front matter.
func Load(dir string) (*Skill, error) {
	content, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	m, _, err := ParseFrontMatter(content)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	_, body, _ := SplitFrontMatter(string(content))
	return &Skill{
		Name:        filepath.Base(dir),
		Description: m.Description,
		Directory:   dir,
		Content:     body,
		Metadata:    m,
	}, nil
}
