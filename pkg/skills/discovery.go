package skills

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// DefaultDir is where skills live relative to the project root.
var DefaultDir = filepath.Join(".trae", "skills")

// BackupSuffix is appended to a skill folder while it is being replaced.
const BackupSuffix = "-backup"

// ignoredDirs are never treated as skills.
var ignoredDirs = map[string]bool{
	"backups": true,
}

func ignored(name string) bool {
	return strings.HasPrefix(name, ".") || ignoredDirs[name] || strings.HasSuffix(name, BackupSuffix)
}

// Discovery finds skill directories under one or more roots.
type Discovery struct {
	skillDirs []string
}

// Option is a function that configures a Discovery
type Option func(*Discovery) error

// WithSkillDirs sets custom skill directories. Earlier directories win
// when the same skill name appears twice.
func WithSkillDirs(dirs ...string) Option {
	return func(d *Discovery) error {
		if len(dirs) == 0 {
			return errors.New("at least one skill directory is required")
		}
		d.skillDirs = dirs
		return nil
	}
}

// NewDiscovery creates a new skill discovery instance
func NewDiscovery(opts ...Option) (*Discovery, error) {
	d := &Discovery{skillDirs: []string{DefaultDir}}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// DiscoverSkills returns every directory containing a SKILL.md, keyed by
// directory name. Hidden directories, the backups folder and folders
// moved aside during an update are skipped.
// Skills with unreadable front matter are still returned, with nil Metadata.
func (d *Discovery) DiscoverSkills() (map[string]*Skill, error) {
	skills := make(map[string]*Skill)

	for _, dir := range d.skillDirs {
		d.discoverSkillsFromDir(dir, skills)
	}

	return skills, nil
}

func (d *Discovery) discoverSkillsFromDir(dir string, skills map[string]*Skill) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		name := entry.Name()
		if ignored(name) {
			continue
		}

		entryPath := filepath.Join(dir, name)

		info, err := os.Stat(entryPath)
		if err != nil || !info.IsDir() {
			continue
		}

		if _, err := os.Stat(filepath.Join(entryPath, FileName)); err != nil {
			continue
		}
		if _, exists := skills[name]; exists {
			continue
		}

		skill, err := Load(entryPath)
		if err != nil {
			skill = &Skill{Name: name, Directory: entryPath}
		}
		skills[name] = skill
	}
}

// ListSkillNames returns the sorted names of all available skills
func (d *Discovery) ListSkillNames() ([]string, error) {
	skills, err := d.DiscoverSkills()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(skills))
	for name := range skills {
		names = append(names, name)
	}
	sort.Strings(names)

	return names, nil
}
