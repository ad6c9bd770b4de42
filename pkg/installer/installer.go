// Package installer installs skills from git repositories: clone with
// retries, locate the skill folder, copy it into the skills directory and
// record where it came from.
package installer

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinntalk/skills4ai/pkg/audit"
	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
	"github.com/kinntalk/skills4ai/pkg/registry"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

var (
	// ErrSubdirNotFound is returned when the requested folder is not in the repository.
	ErrSubdirNotFound = errors.New("subdirectory not found in repository")
	// ErrAborted is returned when the user declines to overwrite an existing skill.
	ErrAborted = errors.New("installation aborted")
)

// commonPrefixes are tried, in order, when a subdirectory is not found
// where the source says it is.
var commonPrefixes = []string{"skills", "packages", "apps"}

// Prompter asks the user for confirmation.
type Prompter interface {
	Confirm(question string) bool
}

// Options control a single installation.
type Options struct {
	// Dest is the skills directory the skill is installed into.
	Dest string
	// Force overwrites an existing skill without asking.
	Force bool
	// Audit runs the auditor on the installed skill.
	Audit      bool
	AuditLevel audit.Level
}

// Result describes an installed skill.
type Result struct {
	Name    string
	Path    string
	RepoURL string
	Subdir  string
	Commit  string
	// Relocated is set when the subdirectory was found under a common prefix.
	Relocated bool
	// Audit is the post-install audit report, when one ran.
	Audit *audit.Report
	// Warnings are advisory failures that did not stop the installation.
	Warnings []error
}

// Installer clones and installs skills.
type Installer struct {
	Git      Git
	Prompter Prompter
	BaseURL  string
	Attempts uint
	Delay    time.Duration
	Now      func() time.Time
}

// New returns an Installer configured from cfg.
func New(cfg *config.Config, prompter Prompter) *Installer {
	return &Installer{
		Git:      NewGit(),
		Prompter: prompter,
		BaseURL:  cfg.GitHubURL,
		Attempts: cfg.Clone.Attempts,
		Delay:    cfg.Clone.Delay,
		Now:      time.Now,
	}
}

// Install installs the skill named by source into opts.Dest. The
// temporary clone is removed on every return path.
func (i *Installer) Install(ctx context.Context, source string, opts Options) (*Result, error) {
	repoURL, subdir := ParseSource(source, i.BaseURL)
	log := logger.G(ctx).WithFields(logrus.Fields{"repo": repoURL, "subdir": subdir})
	log.Info("installing skill")

	tmp, err := os.MkdirTemp("", "skills4ai-install-*")
	if err != nil {
		return nil, errors.Wrap(err, "failed to create temporary directory")
	}
	defer func() {
		if err := osutil.RemoveAll(tmp); err != nil {
			log.WithError(err).Warnf("could not remove temporary directory %s", tmp)
		}
	}()

	cloneDir := filepath.Join(tmp, "repo")
	if err := i.clone(ctx, log, repoURL, cloneDir); err != nil {
		return nil, err
	}

	commit, err := i.Git.HeadCommit(ctx, cloneDir)
	if err != nil || commit == "" {
		log.WithError(err).Warn("could not resolve commit")
		commit = registry.VersionUnknown
	}

	srcDir, resolved, err := resolveSubdir(cloneDir, subdir)
	if err != nil {
		return nil, err
	}
	result := &Result{
		RepoURL:   repoURL,
		Subdir:    resolved,
		Commit:    commit,
		Relocated: subdir != "" && resolved != path.Clean(strings.Trim(subdir, "/")),
	}
	if result.Relocated {
		log.Warnf("subdirectory '%s' not found, using '%s' instead", subdir, resolved)
	}

	result.Name = RepoName(repoURL)
	if resolved != "" {
		result.Name = path.Base(resolved)
	}
	if result.Name == "" || result.Name == "." || result.Name == "/" {
		return nil, errors.Errorf("cannot derive a skill name from %s", source)
	}

	dest := filepath.Join(opts.Dest, result.Name)
	result.Path = dest

	if osutil.Exists(dest) {
		if !opts.Force {
			question := fmt.Sprintf("Destination '%s' already exists. Overwrite?", dest)
			if i.Prompter == nil || !i.Prompter.Confirm(question) {
				return nil, ErrAborted
			}
		}
		if err := osutil.RemoveAll(dest); err != nil {
			return nil, errors.Wrapf(err, "failed to remove existing %s", dest)
		}
	}

	skipGit := func(rel string, _ os.FileInfo) bool { return rel == ".git" }
	if err := osutil.CopyDirFilter(srcDir, dest, skipGit); err != nil {
		return nil, errors.Wrapf(err, "failed to copy skill to %s", dest)
	}
	log.WithField("dest", dest).Info("skill copied")

	result.Warnings = append(result.Warnings, i.register(ctx, opts.Dest, result)...)

	if opts.Audit {
		report, err := audit.Run(ctx, dest, audit.Options{Level: opts.AuditLevel, SkillsDir: opts.Dest})
		switch {
		case err != nil:
			result.Warnings = append(result.Warnings, errors.Wrap(err, "audit failed"))
		case report.Failed():
			result.Audit = report
			result.Warnings = append(result.Warnings, errors.New("audit reported errors"))
		default:
			result.Audit = report
		}
	}

	return result, nil
}

func (i *Installer) clone(ctx context.Context, log *logrus.Entry, repoURL, dir string) error {
	attempts := i.Attempts
	if attempts == 0 {
		attempts = 1
	}

	err := retry.Do(
		func() error {
			if err := os.RemoveAll(dir); err != nil {
				return err
			}
			return i.Git.Clone(ctx, repoURL, dir)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(i.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithError(err).Warnf("Retry %d/%d...", n+1, attempts)
		}),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to clone repository after %d attempts", attempts)
	}
	return nil
}

// resolveSubdir finds the skill folder inside the clone. A subdirectory
// missing at its literal path is looked up under the common monorepo
// prefixes by its last element.
func resolveSubdir(root, subdir string) (string, string, error) {
	if subdir == "" {
		return root, "", nil
	}

	clean := path.Clean(strings.Trim(subdir, "/"))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", "", errors.Wrapf(ErrSubdirNotFound, "invalid subdirectory '%s'", subdir)
	}

	if osutil.IsDir(filepath.Join(root, filepath.FromSlash(clean))) {
		return filepath.Join(root, filepath.FromSlash(clean)), clean, nil
	}

	leaf := path.Base(clean)
	for _, prefix := range commonPrefixes {
		candidate := prefix + "/" + leaf
		if osutil.IsDir(filepath.Join(root, prefix, leaf)) {
			return filepath.Join(root, prefix, leaf), candidate, nil
		}
	}

	return "", "", errors.Wrapf(ErrSubdirNotFound, "'%s'", subdir)
}

// register records the installed skill in skills.json and skill_map.json.
// Failures are returned as warnings.
func (i *Installer) register(ctx context.Context, dest string, r *Result) []error {
	var warnings []error
	log := logger.G(ctx).WithField("skill", r.Name)

	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	entry := registry.Entry{
		Source:    r.RepoURL,
		Subdir:    r.Subdir,
		Version:   r.Commit,
		UpdatedAt: registry.Timestamp(now()),
	}
	if err := registry.Upsert(config.RegistryPath(dest), r.Name, entry); err != nil {
		log.WithError(err).Warn("could not update skills.json")
		warnings = append(warnings, errors.Wrap(err, "could not update skills.json"))
	}

	var meta *skills.Metadata
	if content, err := os.ReadFile(filepath.Join(r.Path, skills.FileName)); err == nil {
		if m, _, err := skills.ParseFrontMatter(content); err == nil {
			meta = m
		} else {
			log.WithError(err).Debug("installed SKILL.md has no usable front matter")
		}
	}
	if err := registry.UpsertMap(config.SkillMapPath(dest), r.Name, registry.MapEntryFor(r.Name, meta)); err != nil {
		log.WithError(err).Warn("could not update skill_map.json")
		warnings = append(warnings, errors.Wrap(err, "could not update skill_map.json"))
	}

	return warnings
}
