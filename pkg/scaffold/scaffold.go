// Package scaffold creates new skill directories from embedded templates.
package scaffold

import (
	"bytes"
	"context"
	"embed"
	"os"
	"path/filepath"
	"runtime"
	"text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/registry"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

// TemplateFS holds the files written into every new skill.
//
//go:embed templates/*
var TemplateFS embed.FS

// ErrExists is returned when the skill directory is already present.
var ErrExists = errors.New("skill directory already exists")

// TemplateData is passed to every template.
type TemplateData struct {
	Name  string
	Title string
}

type file struct {
	template string
	path     string
	mode     os.FileMode
}

var files = []file{
	{"templates/example.py.tmpl", filepath.Join(skills.ScriptsDir, "example.py"), 0o755},
	{"templates/requirements.txt.tmpl", filepath.Join(skills.ScriptsDir, "requirements.txt"), 0o644},
	{"templates/api_reference.md.tmpl", filepath.Join(skills.ReferencesDir, "api_reference.md"), 0o644},
	{"templates/example_asset.txt.tmpl", filepath.Join(skills.AssetsDir, "example_asset.txt"), 0o644},
}

// Result describes a created skill.
type Result struct {
	Dir   string
	Files []string
	// Warnings are registry update failures. The skill itself was created.
	Warnings []error
}

// Scaffolder creates skills.
type Scaffolder struct {
	Now  func() time.Time
	GOOS string
}

// New returns a Scaffolder for the running platform.
func New() *Scaffolder {
	return &Scaffolder{Now: time.Now, GOOS: runtime.GOOS}
}

// Create makes root/name with SKILL.md and example resources, then
// registers it in root/skills.json and root/skill_map.json. Files written
// before a failure are left in place.
func (s *Scaffolder) Create(ctx context.Context, name, root string) (*Result, error) {
	if err := skills.ValidateName(name); err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid path %s", root)
	}
	dir := filepath.Join(absRoot, name)

	if _, err := os.Stat(dir); err == nil {
		return nil, errors.Wrap(ErrExists, dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create skill directory")
	}

	log := logger.G(ctx).WithField("skill", name)
	result := &Result{Dir: dir}
	data := TemplateData{Name: name, Title: skills.TitleCase(name)}

	skillMD, err := renderSkillMD(data)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, skills.FileName), []byte(skillMD), 0o644); err != nil {
		return nil, errors.Wrap(err, "failed to write SKILL.md")
	}
	result.Files = append(result.Files, skills.FileName)

	for _, f := range files {
		content, err := render(f.template, data)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(dir, f.path)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create %s", filepath.Dir(f.path))
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s", f.path)
		}
		if f.mode&0o111 != 0 && s.GOOS != "windows" {
			if err := os.Chmod(target, f.mode); err != nil {
				return nil, errors.Wrapf(err, "failed to make %s executable", f.path)
			}
		}
		result.Files = append(result.Files, filepath.ToSlash(f.path))
		log.WithField("file", f.path).Debug("created")
	}

	entry := registry.Entry{
		Source:    registry.SourceLocal,
		Subdir:    "",
		Version:   registry.VersionUnknown,
		UpdatedAt: registry.Timestamp(s.Now()),
	}
	if err := registry.Upsert(config.RegistryPath(absRoot), name, entry); err != nil {
		log.WithError(err).Warn("could not update skills.json")
		result.Warnings = append(result.Warnings, errors.Wrap(err, "could not update skills.json"))
	}

	mapEntry := registry.MapEntry{
		Name:        name,
		Description: "TODO: Add description for " + name,
		Keywords:    []string{skills.Spaced(name)},
		Aliases:     []string{name},
	}
	if err := registry.UpsertMap(config.SkillMapPath(absRoot), name, mapEntry); err != nil {
		log.WithError(err).Warn("could not update skill_map.json")
		result.Warnings = append(result.Warnings, errors.Wrap(err, "could not update skill_map.json"))
	}

	return result, nil
}

func renderSkillMD(data TemplateData) (string, error) {
	fm, err := skills.RenderFrontMatter(&skills.Metadata{
		Name: data.Name,
		Description: "TODO: Complete and informative explanation of what this skill does and when to use it. " +
			"Include WHEN to use this skill: specific scenarios, file types, or tasks that trigger it.",
	})
	if err != nil {
		return "", err
	}
	body, err := render("templates/SKILL.md.tmpl", data)
	if err != nil {
		return "", err
	}
	return fm + body, nil
}

func render(name string, data TemplateData) (string, error) {
	content, err := TemplateFS.ReadFile(name)
	if err != nil {
		return "", errors.Wrap(err, "failed to read template file")
	}

	tmpl, err := template.New(filepath.Base(name)).Parse(string(content))
	if err != nil {
		return "", errors.Wrap(err, "failed to parse template")
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "failed to execute template")
	}
	return buf.String(), nil
}
