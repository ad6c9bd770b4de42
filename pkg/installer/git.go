package installer

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/osutil"
)

// Git is the subset of git the installer and manager need.
type Git interface {
	// Clone makes a shallow clone of url into dir.
	Clone(ctx context.Context, url, dir string) error
	// HeadCommit returns the commit checked out in dir.
	HeadCommit(ctx context.Context, dir string) (string, error)
	// RemoteHead returns the commit HEAD points to on the remote.
	RemoteHead(ctx context.Context, url string) (string, error)
}

// ExecGit runs the git binary.
type ExecGit struct {
	Runner osutil.CommandRunner
}

// NewGit returns a Git backed by the git executable on PATH.
func NewGit() *ExecGit {
	return &ExecGit{Runner: &osutil.ExecRunner{}}
}

func (g *ExecGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	stdout, stderr, err := g.Runner.Run(ctx, dir, "git", args...)
	if err != nil {
		msg := strings.TrimSpace(stderr)
		if msg == "" {
			return "", errors.Wrapf(err, "git %s", args[0])
		}
		return "", errors.Wrapf(err, "git %s: %s", args[0], msg)
	}
	return strings.TrimSpace(stdout), nil
}

// Clone implements Git.
func (g *ExecGit) Clone(ctx context.Context, url, dir string) error {
	_, err := g.run(ctx, "", "clone", "--depth", "1", url, dir)
	return err
}

// HeadCommit implements Git.
func (g *ExecGit) HeadCommit(ctx context.Context, dir string) (string, error) {
	return g.run(ctx, dir, "rev-parse", "HEAD")
}

// RemoteHead implements Git.
func (g *ExecGit) RemoteHead(ctx context.Context, url string) (string, error) {
	out, err := g.run(ctx, "", "ls-remote", url, "HEAD")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", errors.Errorf("no HEAD reference at %s", url)
	}
	return fields[0], nil
}
