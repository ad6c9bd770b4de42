package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

// Summary counts the outcome of an update-all run.
type Summary struct {
	Checked   int
	Available []Status
	Succeeded []string
	Failed    []string
	// DryRun is set when updates were found but not applied.
	DryRun bool
}

// journal mirrors every user-facing line into the update log.
type journal struct {
	p   presenter.Presenter
	log *logrus.Logger
}

func (j *journal) write(msg string) {
	if j.log != nil {
		j.log.Info(msg)
	}
}

func (j *journal) info(msg string)    { j.p.Info(msg); j.write(msg) }
func (j *journal) success(msg string) { j.p.Success(msg); j.write(msg) }
func (j *journal) warning(msg string) { j.p.Warning(msg); j.write(msg) }

func (j *journal) fail(err error) {
	j.p.Error(err, "")
	j.write(err.Error())
}

func (j *journal) banner(title string) {
	rule := strings.Repeat("=", 60)
	j.info(rule)
	j.info(title)
	j.info(rule)
}

func (j *journal) rule() {
	j.info(strings.Repeat("-", 60))
}

func (m *Manager) openJournal(ctx context.Context) (*journal, func()) {
	j := &journal{p: m.Presenter}
	if m.LogFile == "" {
		return j, func() {}
	}
	l, closer, err := logger.OpenJournal(m.LogFile)
	if err != nil {
		logger.G(ctx).WithError(err).Warn("could not open update log")
		m.Presenter.Warning(fmt.Sprintf("Could not write to log file: %v", err))
		return j, func() {}
	}
	j.log = l
	return j, func() {
		if err := closer.Close(); err != nil {
			logger.G(ctx).WithError(err).Warn("could not close update log")
		}
	}
}

// UpdateAll checks every registered skill and, when force is set, updates
// the ones whose remote moved. Without force it only reports. Each update
// is preceded by a zip snapshot, and snapshots beyond Keep are pruned
// after a successful update.
func (m *Manager) UpdateAll(ctx context.Context, force bool) (*Summary, error) {
	j, closeJournal := m.openJournal(ctx)
	defer closeJournal()
	msgs := m.Presenter.Messages()

	j.banner(msgs.UpdateStart)

	reg, err := registry.Load(m.registryPath())
	if err != nil {
		j.fail(err)
		return nil, err
	}
	summary := &Summary{Checked: len(reg.Skills)}
	if len(reg.Skills) == 0 {
		j.info("No skills found in registry.")
		return summary, nil
	}

	j.info(msgs.UpdatePhaseCheck)
	j.rule()
	for _, item := range sortedItems(reg) {
		st := m.CheckSkill(ctx, item.Name, item.Entry)
		switch st.State {
		case StateSkipped:
			logger.G(ctx).WithField("skill", item.Name).Debug("skipping local skill")
		case StateFailed:
			j.warning(st.Line())
		default:
			j.info(st.Line())
		}
		if st.State == StateAvailable {
			summary.Available = append(summary.Available, st)
		}
	}

	if len(summary.Available) == 0 {
		j.success(msgs.UpdateNone)
		return summary, nil
	}

	j.info(fmt.Sprintf(msgs.UpdateFound, len(summary.Available)))
	for _, st := range summary.Available {
		j.info(fmt.Sprintf("  - %s: %s -> %s", st.Name, st.Entry.ShortVersion(), shortHash(st.Remote)))
	}

	if !force {
		summary.DryRun = true
		j.warning(msgs.UpdateForceHint)
		return summary, nil
	}

	j.info(msgs.UpdatePhaseUpdate)
	j.rule()

	var result *multierror.Error
	for _, st := range summary.Available {
		if err := m.updateOne(ctx, j, st.Name); err != nil {
			summary.Failed = append(summary.Failed, st.Name)
			result = multierror.Append(result, err)
			continue
		}
		summary.Succeeded = append(summary.Succeeded, st.Name)
	}

	j.banner(msgs.UpdateSummary)
	j.info(fmt.Sprintf(msgs.UpdateTotalChecked, summary.Checked))
	j.info(fmt.Sprintf(msgs.UpdateAvailable, len(summary.Available)))
	j.success(fmt.Sprintf(msgs.UpdateSucceeded, len(summary.Succeeded)))
	if len(summary.Failed) > 0 {
		j.fail(errors.Errorf(msgs.UpdateFailed, len(summary.Failed)))
	}
	j.info(fmt.Sprintf("Log file: %s", m.LogFile))
	j.info(fmt.Sprintf("Backups directory: %s", m.BackupsDir))

	return summary, result.ErrorOrNil()
}

func (m *Manager) updateOne(ctx context.Context, j *journal, name string) error {
	if m.Backups != nil {
		archive, err := m.Backups.Create(ctx, name, "")
		if err != nil {
			j.warning(fmt.Sprintf("Error backing up %s: %v", name, err))
		} else {
			j.info(fmt.Sprintf("Backed up %s to %s", name, archive.Path))
		}
	}

	j.info(fmt.Sprintf("Updating %s...", name))
	if _, err := m.Update(ctx, name); err != nil {
		j.fail(errors.Wrapf(err, "Failed to update %s", name))
		return errors.Wrapf(err, "%s", name)
	}
	j.success(fmt.Sprintf("Successfully updated %s", name))

	if m.Backups != nil && m.Keep > 0 {
		removed, err := m.Backups.Cleanup(ctx, m.Keep, name)
		for _, r := range removed {
			j.info(fmt.Sprintf("Removed old backup: %s", r))
		}
		if err != nil {
			j.warning(fmt.Sprintf("Error cleaning up backups: %v", err))
		}
	}
	return nil
}
