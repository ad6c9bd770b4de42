// Package audit runs a battery of static checks against a skill directory.
//
// Every check is a best-effort text heuristic: regular expressions and
// substring matches over SKILL.md and the skill's Python scripts. Checks
// belong to a group, and the audit level decides which groups run and
// whether a failed check counts as an error or a warning.
package audit

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/kinntalk/skills4ai/pkg/logger"
)

// Level selects which check groups run and how strictly they are judged.
type Level string

const (
	// LevelRelaxed runs the core checks only.
	LevelRelaxed Level = "relaxed"
	// LevelStandard runs every group; only core failures are errors.
	LevelStandard Level = "standard"
	// LevelStrict runs every group and treats every failure as an error.
	LevelStrict Level = "strict"
)

// ParseLevel converts a level name, defaulting to standard when s is empty.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelStandard:
		return LevelStandard, nil
	case LevelRelaxed:
		return LevelRelaxed, nil
	case LevelStrict:
		return LevelStrict, nil
	default:
		return "", errors.Errorf("unknown audit level %q (want strict, standard or relaxed)", s)
	}
}

// Group is the family a check belongs to.
type Group string

const (
	GroupCore      Group = "core"
	GroupHeuristic Group = "heuristic"
	GroupI18n      Group = "i18n"
	GroupRegistry  Group = "registry"
)

// Status is the verdict of a single check or of a whole audit.
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusFail    Status = "fail"
)

// Outcome is what a check reports before the level is applied.
type Outcome struct {
	Passed  bool
	Message string
	Details []string
	// Advisory outcomes never become errors, whatever the level.
	Advisory bool
}

func pass(msg string) Outcome {
	return Outcome{Passed: true, Message: msg}
}

func fail(msg string, details ...string) Outcome {
	return Outcome{Message: msg, Details: details}
}

// Check is one named heuristic.
type Check struct {
	Name  string
	Group Group
	Run   func(*Target) Outcome
}

// Result is the judged outcome of one check.
type Result struct {
	Check   string   `json:"check"`
	Group   Group    `json:"group"`
	Status  Status   `json:"status"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// Report is the result of auditing one skill.
type Report struct {
	Skill   string   `json:"skill"`
	Path    string   `json:"path"`
	Level   Level    `json:"level"`
	Status  Status   `json:"status"`
	Results []Result `json:"results"`
}

// Failed reports whether the audit should produce a non-zero exit.
func (r *Report) Failed() bool {
	return r.Status == StatusFail
}

// Options configure a single audit run.
type Options struct {
	Level Level
	// SkillsDir holds skills.json and skill_map.json. The registry check
	// is skipped when it is empty.
	SkillsDir string
}

// Checks returns the full battery in execution order.
func Checks() []Check {
	return []Check{
		{Name: "frontmatter", Group: GroupCore, Run: checkFrontMatter},
		{Name: "name-match", Group: GroupCore, Run: checkNameMatch},
		{Name: "layout", Group: GroupCore, Run: checkLayout},
		{Name: "dependencies", Group: GroupCore, Run: checkDependencies},
		{Name: "packaging", Group: GroupCore, Run: checkPackaging},
		{Name: "init-template", Group: GroupCore, Run: checkInitTemplate},
		{Name: "encoding", Group: GroupHeuristic, Run: checkEncoding},
		{Name: "stale-paths", Group: GroupHeuristic, Run: checkStalePaths},
		{Name: "subprocess", Group: GroupHeuristic, Run: checkSubprocess},
		{Name: "risky-paths", Group: GroupHeuristic, Run: checkRiskyPaths},
		{Name: "absolute-paths", Group: GroupHeuristic, Run: checkAbsolutePaths},
		{Name: "i18n", Group: GroupI18n, Run: checkI18n},
		{Name: "registry", Group: GroupRegistry, Run: checkRegistry},
	}
}

func (l Level) runs(g Group) bool {
	if l == LevelRelaxed {
		return g == GroupCore
	}
	return true
}

func (l Level) judge(c Check, o Outcome) Status {
	switch {
	case o.Passed:
		return StatusPass
	case o.Advisory:
		return StatusWarning
	case l == LevelStrict || c.Group == GroupCore:
		return StatusFail
	default:
		return StatusWarning
	}
}

// Run audits the skill at path.
func Run(ctx context.Context, path string, opts Options) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "skill path %s", path)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skill path %s is not a directory", path)
	}

	level := opts.Level
	if level == "" {
		level = LevelStandard
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	target := newTarget(abs, opts.SkillsDir)

	report := &Report{
		Skill:   target.Name,
		Path:    abs,
		Level:   level,
		Status:  StatusPass,
		Results: []Result{},
	}

	log := logger.G(ctx).WithField("skill", target.Name)
	for _, c := range Checks() {
		if !level.runs(c.Group) {
			continue
		}
		o := c.Run(target)
		status := level.judge(c, o)
		log.WithField("check", c.Name).WithField("status", status).Debug(o.Message)

		report.Results = append(report.Results, Result{
			Check:   c.Name,
			Group:   c.Group,
			Status:  status,
			Message: o.Message,
			Details: o.Details,
		})

		switch {
		case status == StatusFail:
			report.Status = StatusFail
		case status == StatusWarning && report.Status == StatusPass:
			report.Status = StatusWarning
		}
	}

	return report, nil
}
