package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebuild skills.json from the skill folders on disk",
	Long: `Scan the skills directory and rewrite skills.json so it lists exactly the
skill folders present. Provenance of installed skills is kept; new folders are
recorded as local.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if err := syncRegistry(cmd.OutOrStdout(), cfg.SkillsDir, dryRun); err != nil {
			presenter.Error(err, "Failed to sync registry")
			os.Exit(1)
		}
	},
}

var syncListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the skills a sync would record",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := listScanned(cmd.OutOrStdout(), cfg.SkillsDir); err != nil {
			presenter.Error(err, "Failed to scan skills")
			os.Exit(1)
		}
	},
}

func init() {
	syncCmd.Flags().Bool("dry-run", false, "Show what would be written without writing")
	syncCmd.AddCommand(syncListCmd)
	rootCmd.AddCommand(syncCmd)
}

func syncRegistry(w io.Writer, skillsDir string, dryRun bool) error {
	results, err := registry.Sync(skillsDir, config.RegistryPath(skillsDir), dryRun, time.Now())
	if err != nil {
		return err
	}

	if dryRun {
		presenter.Info(fmt.Sprintf("Dry run: Would sync %d skills", len(results)))
		for _, r := range results {
			fmt.Fprintf(w, "  - %s: %s\n", r.Name, r.Entry.Source)
		}
		return nil
	}

	for _, r := range results {
		if r.New {
			presenter.Info(fmt.Sprintf("Added %s (%s)", r.Name, r.Entry.Source))
		}
	}
	presenter.Success(fmt.Sprintf("Synced %d skills to %s", len(results), config.RegistryFile))
	return nil
}

func listScanned(w io.Writer, skillsDir string) error {
	existing, err := registry.Load(config.RegistryPath(skillsDir))
	if err != nil {
		return err
	}
	results, err := registry.Scan(skillsDir, existing, time.Now())
	if err != nil {
		return err
	}

	presenter.Section("Installed Skills")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSOURCE\tVERSION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, r.Entry.Source, r.Entry.ShortVersion())
	}
	return tw.Flush()
}
