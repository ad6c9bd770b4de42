package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/osutil"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/render"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

// toolCheck is one external program skills4ai shells out to.
type toolCheck struct {
	Name    string
	Purpose string
	Path    string
	Found   bool
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report the external tools skills4ai needs",
	Long:  `Report the host platform, the skills found in the skills directory and whether git, pandoc and a Chrome-compatible browser are available.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		runDoctor(cmd.Context(), cmd.OutOrStdout(), lookTools())
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func lookTools() []toolCheck {
	checks := []toolCheck{
		{Name: "git", Purpose: "install, manage"},
		{Name: "pandoc", Purpose: "pdf"},
	}
	for i := range checks {
		if path, err := osutil.LookBinary(checks[i].Name); err == nil {
			checks[i].Path = path
			checks[i].Found = true
		}
	}

	browser := toolCheck{Name: "browser", Purpose: "image"}
	browser.Path, browser.Found = render.LookBrowser()
	return append(checks, browser)
}

func installedSkills(ctx context.Context, dir string) string {
	discovery, err := skills.NewDiscovery(skills.WithSkillDirs(dir))
	if err != nil {
		logger.G(ctx).WithError(err).Debug("failed to set up skill discovery")
		return "none"
	}
	names, err := discovery.ListSkillNames()
	if err != nil || len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}

func runDoctor(ctx context.Context, w io.Writer, tools []toolCheck) {
	if info, err := host.InfoWithContext(ctx); err == nil {
		presenter.Info(fmt.Sprintf("Host: %s %s (%s, kernel %s)", info.Platform, info.PlatformVersion, info.KernelArch, info.KernelVersion))
	} else {
		logger.G(ctx).WithError(err).Debug("failed to read host info")
	}
	if cfg != nil {
		presenter.Info(fmt.Sprintf("Skills directory: %s", cfg.SkillsDir))
		presenter.Info(fmt.Sprintf("Installed skills: %s", installedSkills(ctx, cfg.SkillsDir)))
	}

	presenter.Section("External Tools")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tUSED BY\tSTATUS")
	for _, t := range tools {
		status := "not found"
		if t.Found {
			status = t.Path
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, t.Purpose, status)
	}
	tw.Flush()

	msgs := presenter.Msgs()
	for _, t := range tools {
		if t.Found {
			continue
		}
		switch t.Name {
		case "pandoc":
			presenter.Warning(msgs.PandocHint)
		case "browser":
			presenter.Warning(msgs.BrowserHint)
		default:
			presenter.Warning(fmt.Sprintf("Install %s and make sure it is on PATH", t.Name))
		}
	}
}
