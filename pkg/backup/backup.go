// Package backup writes skills to timestamped zip archives and restores
// them. Archives hold one top-level folder per skill.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/hashicorp/go-multierror"
	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

// TimestampFormat is the layout embedded in archive names.
const TimestampFormat = "20060102_150405"

// AllPrefix names archives that hold every registered skill.
const AllPrefix = "all_skills"

var (
	// ErrSkillNotFound is returned when backing up a skill that is not installed.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrNoSkills is returned when a full backup finds nothing to archive.
	ErrNoSkills = errors.New("no skills found in registry")
	// ErrSkillNotInBackup is returned when restoring a skill the archive lacks.
	ErrSkillNotInBackup = errors.New("skill not found in backup")
	// ErrArchiveNotFound is returned when the archive file does not exist.
	ErrArchiveNotFound = errors.New("backup file not found")
	// ErrAborted is returned when the user declines to overwrite.
	ErrAborted = errors.New("restore cancelled")
	// ErrUnsafeEntry is returned for archive entries that would land
	// outside the skills directory.
	ErrUnsafeEntry = errors.New("archive entry escapes the skills directory")
)

// excluded matches build caches that are never archived.
var excluded = glob.MustCompile("{__pycache__,**/__pycache__,**.pyc}", '/')

// Prompter asks the user for confirmation.
type Prompter interface {
	Confirm(question string) bool
}

// Archive is a backup file on disk.
type Archive struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// SizeMB is the archive size in mebibytes.
func (a Archive) SizeMB() float64 {
	return float64(a.Size) / 1024 / 1024
}

// Manager creates, lists, restores and prunes backups.
type Manager struct {
	SkillsDir  string
	BackupsDir string
	Prompter   Prompter
	Now        func() time.Time
}

// New returns a Manager for the directories in cfg.
func New(cfg *config.Config, prompter Prompter) *Manager {
	return &Manager{
		SkillsDir:  cfg.SkillsDir,
		BackupsDir: cfg.BackupsDir,
		Prompter:   prompter,
		Now:        time.Now,
	}
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}

// Create archives one skill, or every registered skill when skill is
// empty, into outputDir (the backups directory when empty).
func (m *Manager) Create(ctx context.Context, skill, outputDir string) (*Archive, error) {
	if outputDir == "" {
		outputDir = m.BackupsDir
	}
	log := logger.G(ctx)

	var names []string
	prefix := skill
	if skill != "" {
		if !osutil.IsDir(filepath.Join(m.SkillsDir, skill)) {
			return nil, errors.Wrapf(ErrSkillNotFound, "'%s'", skill)
		}
		names = []string{skill}
	} else {
		reg, err := registry.Load(config.RegistryPath(m.SkillsDir))
		if err != nil {
			return nil, err
		}
		for name := range reg.Skills {
			if !osutil.IsDir(filepath.Join(m.SkillsDir, name)) {
				log.Warnf("%s not found, skipping", name)
				continue
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			return nil, ErrNoSkills
		}
		sort.Strings(names)
		prefix = AllPrefix
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create backups directory")
	}
	path := filepath.Join(outputDir, fmt.Sprintf("%s_%s.zip", prefix, m.now().Format(TimestampFormat)))

	if err := writeArchive(path, m.SkillsDir, names); err != nil {
		os.Remove(path)
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to stat backup")
	}
	log.WithField("archive", path).Info("backup created")
	return &Archive{Name: filepath.Base(path), Path: path, Size: info.Size(), ModTime: info.ModTime()}, nil
}

func writeArchive(path, skillsDir string, names []string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create backup file")
	}

	zw := zip.NewWriter(f)
	for _, name := range names {
		if err := addSkill(zw, filepath.Join(skillsDir, name), name); err != nil {
			zw.Close()
			f.Close()
			return errors.Wrapf(err, "failed to back up %s", name)
		}
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return errors.Wrap(err, "failed to finish backup")
	}
	return errors.Wrap(f.Close(), "failed to close backup file")
}

func addSkill(zw *zip.Writer, dir, name string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if excluded.Match(rel) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name + "/" + rel
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(w, src)
		return err
	})
}

// List returns the archives in the backups directory, newest first.
func (m *Manager) List() ([]Archive, error) {
	matches, err := filepath.Glob(filepath.Join(m.BackupsDir, "*.zip"))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list backups")
	}

	archives := make([]Archive, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		archives = append(archives, Archive{
			Name:    filepath.Base(path),
			Path:    path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(archives, func(i, j int) bool {
		if !archives[i].ModTime.Equal(archives[j].ModTime) {
			return archives[i].ModTime.After(archives[j].ModTime)
		}
		return archives[i].Name > archives[j].Name
	})
	return archives, nil
}

// Restore extracts an archive into the skills directory. With skill set
// only that skill is restored and its current folder is replaced; without
// it every entry is extracted over the existing files. Both ask before
// overwriting unless force is set. It returns the restored skill names.
func (m *Manager) Restore(ctx context.Context, file, skill string, force bool) ([]string, error) {
	if !osutil.Exists(file) {
		return nil, errors.Wrapf(ErrArchiveNotFound, "%s", file)
	}

	zr, err := zip.OpenReader(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", file)
	}
	defer zr.Close()

	byName := map[string][]*zip.File{}
	for _, f := range zr.File {
		top, _, _ := strings.Cut(f.Name, "/")
		byName[top] = append(byName[top], f)
	}

	var names []string
	if skill != "" {
		if _, ok := byName[skill]; !ok {
			return nil, errors.Wrapf(ErrSkillNotInBackup, "'%s'", skill)
		}
		dest := filepath.Join(m.SkillsDir, skill)
		if osutil.Exists(dest) {
			if !force && !m.confirm(fmt.Sprintf("Skill '%s' already exists. Overwrite?", skill)) {
				return nil, ErrAborted
			}
			if err := osutil.RemoveAll(dest); err != nil {
				return nil, errors.Wrapf(err, "failed to remove %s", dest)
			}
		}
		names = []string{skill}
	} else {
		if !force && !m.confirm("This will overwrite existing skills. Continue?") {
			return nil, ErrAborted
		}
		for name := range byName {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	var result *multierror.Error
	for _, name := range names {
		for _, f := range byName[name] {
			if err := m.extract(f); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "failed to extract %s", f.Name))
			}
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}

	logger.G(ctx).WithField("archive", file).Infof("restored %d skill(s)", len(names))
	return names, nil
}

func (m *Manager) confirm(question string) bool {
	return m.Prompter != nil && m.Prompter.Confirm(question)
}

func (m *Manager) extract(f *zip.File) error {
	target, err := safeJoin(m.SkillsDir, f.Name)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// safeJoin resolves an archive entry name under root and rejects names
// that are absolute or climb out of it.
func safeJoin(root, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") || filepath.IsAbs(name) {
		return "", errors.Wrapf(ErrUnsafeEntry, "%q", name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrUnsafeEntry, "%q", name)
	}
	return filepath.Join(root, clean), nil
}

var timestampSuffix = `_\d{8}_\d{6}\.zip$`

// Cleanup deletes all but the keep newest archives, either across the
// whole backups directory or, with skill set, among that skill's archives.
// It returns the removed file names.
func (m *Manager) Cleanup(ctx context.Context, keep int, skill string) ([]string, error) {
	if keep < 0 {
		keep = 0
	}

	archives, err := m.List()
	if err != nil {
		return nil, err
	}

	if skill != "" {
		pattern := regexp.MustCompile("^" + regexp.QuoteMeta(skill) + timestampSuffix)
		filtered := archives[:0]
		for _, a := range archives {
			if pattern.MatchString(a.Name) {
				filtered = append(filtered, a)
			}
		}
		archives = filtered
	}

	if len(archives) <= keep {
		return nil, nil
	}

	var removed []string
	var result *multierror.Error
	for _, a := range archives[keep:] {
		if err := os.Remove(a.Path); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "failed to remove %s", a.Name))
			continue
		}
		removed = append(removed, a.Name)
	}
	logger.G(ctx).WithField("kept", keep).Infof("removed %d old backup(s)", len(removed))

	return removed, result.ErrorOrNil()
}
