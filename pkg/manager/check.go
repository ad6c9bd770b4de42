package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

// State is the outcome of checking one skill against its remote.
type State int

const (
	// StateSkipped marks local skills and skills without a known version.
	StateSkipped State = iota
	// StateUpToDate means the remote HEAD matches the recorded version.
	StateUpToDate
	// StateAvailable means the remote HEAD moved.
	StateAvailable
	// StateFailed means the remote could not be queried.
	StateFailed
)

// Status is the check result of one skill.
type Status struct {
	Name   string
	Entry  registry.Entry
	Remote string
	State  State
	Err    error
}

// Line renders the status the way check and update-all print it.
func (s Status) Line() string {
	switch s.State {
	case StateAvailable:
		return fmt.Sprintf("Checking %s... Update available! (%s -> %s)", s.Name, s.Entry.ShortVersion(), shortHash(s.Remote))
	case StateUpToDate:
		return fmt.Sprintf("Checking %s... Up to date.", s.Name)
	case StateFailed:
		return fmt.Sprintf("Checking %s... Failed to check remote.", s.Name)
	default:
		return fmt.Sprintf("Skipping %s: Missing source or version info.", s.Name)
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// CheckSkill queries the remote HEAD of one registry entry.
func (m *Manager) CheckSkill(ctx context.Context, name string, entry registry.Entry) Status {
	st := Status{Name: name, Entry: entry}
	if !entry.IsRemote() {
		st.State = StateSkipped
		return st
	}

	url := CheckURL(entry.Source, m.GitHubURL)
	head, err := m.Remote.RemoteHead(ctx, url)
	head = strings.TrimSpace(head)
	if err == nil && head == "" {
		err = errors.New("empty ls-remote output")
	}
	if err != nil {
		logger.G(ctx).WithError(err).WithField("url", url).Debug("remote check failed")
		st.State = StateFailed
		st.Err = err
		return st
	}

	st.Remote = head
	if head != entry.Version {
		st.State = StateAvailable
	} else {
		st.State = StateUpToDate
	}
	return st
}

// Check queries every registered skill, in name order.
func (m *Manager) Check(ctx context.Context) ([]Status, error) {
	reg, err := registry.Load(m.registryPath())
	if err != nil {
		return nil, err
	}

	items := sortedItems(reg)
	statuses := make([]Status, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, m.CheckSkill(ctx, item.Name, item.Entry))
	}
	return statuses, nil
}

// Available filters statuses down to the skills with updates.
func Available(statuses []Status) []Status {
	var out []Status
	for _, s := range statuses {
		if s.State == StateAvailable {
			out = append(out, s)
		}
	}
	return out
}
