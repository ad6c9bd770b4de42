// Package manager lists, checks and updates installed skills against the
// git sources recorded in skills.json.
package manager

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/audit"
	"github.com/kinntalk/skills4ai/pkg/backup"
	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/installer"
	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/registry"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

var (
	// ErrNotFound is returned for skills missing from skills.json.
	ErrNotFound = errors.New("skill not found in registry")
	// ErrNotUpdatable is returned for local skills and skills without a known version.
	ErrNotUpdatable = errors.New("local skill or missing version info")
	// ErrManualIntervention is returned when a failed update could not put
	// the previous version back.
	ErrManualIntervention = errors.New("failed to restore backup, manual intervention required")
)

// Installer installs a skill from a source string.
type Installer interface {
	Install(ctx context.Context, source string, opts installer.Options) (*installer.Result, error)
}

// RemoteChecker resolves the HEAD commit of a remote repository.
type RemoteChecker interface {
	RemoteHead(ctx context.Context, url string) (string, error)
}

// Snapshotter archives a skill and prunes its old archives.
type Snapshotter interface {
	Create(ctx context.Context, skill, outputDir string) (*backup.Archive, error)
	Cleanup(ctx context.Context, keep int, skill string) ([]string, error)
}

// Manager operates on the skills directory and its registry.
type Manager struct {
	SkillsDir  string
	BackupsDir string
	LogFile    string
	GitHubURL  string
	Keep       int
	AuditLevel audit.Level

	Installer Installer
	Remote    RemoteChecker
	Backups   Snapshotter
	Presenter presenter.Presenter
}

// New wires a Manager from cfg with the real git client, installer and
// backup manager.
func New(cfg *config.Config, p presenter.Presenter) *Manager {
	inst := installer.New(cfg, p)
	level, err := audit.ParseLevel(cfg.Audit.Level)
	if err != nil {
		level = audit.LevelStandard
	}
	return &Manager{
		SkillsDir:  cfg.SkillsDir,
		BackupsDir: cfg.BackupsDir,
		LogFile:    cfg.LogFile,
		GitHubURL:  cfg.GitHubURL,
		Keep:       cfg.Backup.Keep,
		AuditLevel: level,
		Installer:  inst,
		Remote:     inst.Git,
		Backups:    backup.New(cfg, p),
		Presenter:  p,
	}
}

func (m *Manager) registryPath() string {
	return config.RegistryPath(m.SkillsDir)
}

// Item is one row of the installed skills listing.
type Item struct {
	Name  string
	Entry registry.Entry
}

// List returns the registered skills sorted by name.
func (m *Manager) List() ([]Item, error) {
	reg, err := registry.Load(m.registryPath())
	if err != nil {
		return nil, err
	}
	return sortedItems(reg), nil
}

func sortedItems(reg *registry.Registry) []Item {
	items := make([]Item, 0, len(reg.Skills))
	for name, entry := range reg.Skills {
		items = append(items, Item{Name: name, Entry: entry})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// CheckURL returns the URL to query for a recorded source. GitHub sources
// are redirected to githubURL when it names a different host.
func CheckURL(repoURL, githubURL string) string {
	base := strings.TrimRight(githubURL, "/")
	if strings.Contains(repoURL, "github.com") && base != "" && !strings.Contains(base, "github.com") {
		return strings.Replace(repoURL, installer.DefaultBaseURL, base, 1)
	}
	return repoURL
}

// InstallSource rebuilds an installer source string from a recorded repo
// URL and subdirectory. GitHub sources use the short owner/repo/subdir form
// when a mirror is configured, so the mirror is honored on reinstall.
func InstallSource(repoURL, subdir, githubURL string) string {
	subdir = strings.Trim(subdir, "/")
	if subdir == "" || strings.Contains(repoURL, "/tree/") {
		return repoURL
	}

	trimmed := strings.TrimSuffix(strings.TrimRight(repoURL, "/"), ".git")
	base := strings.TrimRight(githubURL, "/")
	if strings.Contains(repoURL, "github.com") && base != "" && !strings.Contains(base, "github.com") {
		parts := strings.Split(trimmed, "/")
		if len(parts) >= 2 {
			return parts[len(parts)-2] + "/" + parts[len(parts)-1] + "/" + subdir
		}
	}
	return trimmed + "/tree/main/" + subdir
}

// Update reinstalls one skill from its recorded source. The current folder
// is moved aside first and moved back if the install fails.
func (m *Manager) Update(ctx context.Context, name string) (*installer.Result, error) {
	reg, err := registry.Load(m.registryPath())
	if err != nil {
		return nil, err
	}
	entry, ok := reg.Skills[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "'%s'", name)
	}
	if !entry.IsRemote() {
		return nil, errors.Wrapf(ErrNotUpdatable, "'%s'", name)
	}

	log := logger.G(ctx).WithField("skill", name)
	source := InstallSource(entry.Source, entry.Subdir, m.GitHubURL)
	log.WithField("source", source).Info("updating skill")

	skillPath := filepath.Join(m.SkillsDir, name)
	backupPath := skillPath + skills.BackupSuffix
	movedAside := false
	if osutil.Exists(skillPath) {
		if osutil.Exists(backupPath) {
			if err := osutil.RemoveAll(backupPath); err != nil {
				return nil, errors.Wrapf(err, "failed to remove stale backup %s", backupPath)
			}
		}
		if err := os.Rename(skillPath, backupPath); err != nil {
			return nil, errors.Wrapf(err, "failed to back up %s", name)
		}
		movedAside = true
		log.WithField("backup", backupPath).Debug("moved existing skill aside")
	}

	result, installErr := m.Installer.Install(ctx, source, installer.Options{
		Dest:       m.SkillsDir,
		Force:      true,
		Audit:      true,
		AuditLevel: m.AuditLevel,
	})
	if installErr == nil {
		if movedAside {
			if err := osutil.RemoveAll(backupPath); err != nil {
				log.WithError(err).Warnf("could not remove backup %s", backupPath)
			}
		}
		return result, nil
	}

	if !movedAside {
		return nil, errors.Wrapf(installErr, "failed to update %s", name)
	}
	if osutil.Exists(skillPath) {
		if err := osutil.RemoveAll(skillPath); err != nil {
			log.WithError(err).Warnf("could not remove partial install %s", skillPath)
		}
	}
	if err := os.Rename(backupPath, skillPath); err != nil {
		log.WithError(err).Error("failed to restore backup")
		return nil, errors.Wrapf(ErrManualIntervention, "backup left at %s (%v)", backupPath, installErr)
	}
	return nil, errors.Wrapf(installErr, "failed to update %s, previous version restored", name)
}
