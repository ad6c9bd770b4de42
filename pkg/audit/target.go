package audit

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Target is the skill directory under audit. File listings are computed
// once and shared by every check.
type Target struct {
	Path      string
	Name      string
	SkillsDir string

	fsys  fileSystem
	cache map[string][]string
}

type fileSystem interface {
	Glob(pattern string) ([]string, error)
}

type dirFS string

func (d dirFS) Glob(pattern string) ([]string, error) {
	return doublestar.Glob(os.DirFS(string(d)), pattern, doublestar.WithFilesOnly())
}

func newTarget(dir, skillsDir string) *Target {
	return &Target{
		Path:      dir,
		Name:      filepath.Base(dir),
		SkillsDir: skillsDir,
		fsys:      dirFS(dir),
		cache:     map[string][]string{},
	}
}

// Files returns the slash-separated paths, relative to the skill, of the
// files matching pattern. Hidden directories and __pycache__ are skipped
// and the result is sorted.
func (t *Target) Files(pattern string) []string {
	if files, ok := t.cache[pattern]; ok {
		return files
	}

	matches, err := t.fsys.Glob(pattern)
	if err != nil {
		matches = nil
	}

	files := make([]string, 0, len(matches))
	for _, m := range matches {
		if skipped(m) {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	t.cache[pattern] = files
	return files
}

func skipped(rel string) bool {
	parts := strings.Split(path.Dir(rel), "/")
	for _, p := range parts {
		if p == "__pycache__" || (strings.HasPrefix(p, ".") && p != ".") {
			return true
		}
	}
	return false
}

// PythonFiles returns every .py file of the skill.
func (t *Target) PythonFiles() []string {
	return t.Files("**/*.py")
}

// Abs joins a relative slash path onto the skill directory.
func (t *Target) Abs(rel string) string {
	return filepath.Join(t.Path, filepath.FromSlash(rel))
}

// ReadLines reads a file of the skill and splits it into lines.
func (t *Target) ReadLines(rel string) ([]string, error) {
	data, err := os.ReadFile(t.Abs(rel))
	if err != nil {
		return nil, err
	}
	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(content, "\n"), nil
}

// Exists reports whether rel exists inside the skill.
func (t *Target) Exists(rel string) bool {
	_, err := os.Stat(t.Abs(rel))
	return err == nil
}
