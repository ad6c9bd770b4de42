package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/manager"
	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/registry"
)

var manageCmd = &cobra.Command{
	Use:   "manage",
	Short: "List, check and update installed skills",
	Long:  `List installed skills, check their sources for new commits and update them.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var manageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skills recorded in skills.json",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := listManagedSkills(cmd.OutOrStdout(), manager.New(cfg, presenter.Default())); err != nil {
			presenter.Error(err, "Failed to list skills")
			os.Exit(1)
		}
	},
}

var manageCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check installed skills for new commits",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := checkSkills(cmd.Context(), manager.New(cfg, presenter.Default())); err != nil {
			presenter.Error(err, "Failed to check skills")
			os.Exit(1)
		}
	},
}

var manageUpdateCmd = &cobra.Command{
	Use:   "update <name>",
	Short: "Reinstall one skill from its recorded source",
	Long: `Reinstall one skill from its recorded source. The current version is moved
aside and put back if the update fails.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")
		if err := updateSkill(cmd.Context(), manager.New(cfg, presenter.Default()), args[0], force); err != nil {
			presenter.Error(err, "Failed to update skill")
			os.Exit(1)
		}
	},
}

var manageUpdateAllCmd = &cobra.Command{
	Use:   "update-all",
	Short: "Check every skill and update the ones with new commits",
	Long: `Check every skill in skills.json for new commits. Without --force only a
report is printed; with --force each outdated skill is archived and updated.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		force, _ := cmd.Flags().GetBool("force")
		if _, err := manager.New(cfg, presenter.Default()).UpdateAll(cmd.Context(), force); err != nil {
			os.Exit(1)
		}
	},
}

func init() {
	manageUpdateCmd.Flags().BoolP("force", "f", false, "Update without asking for confirmation")
	manageUpdateAllCmd.Flags().BoolP("force", "f", false, "Apply the updates instead of only reporting them")

	manageCmd.AddCommand(manageListCmd)
	manageCmd.AddCommand(manageCheckCmd)
	manageCmd.AddCommand(manageUpdateCmd)
	manageCmd.AddCommand(manageUpdateAllCmd)
	rootCmd.AddCommand(manageCmd)
}

func listManagedSkills(w io.Writer, m *manager.Manager) error {
	items, err := m.List()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		presenter.Info("No skills found in registry (skills.json).")
		return nil
	}

	presenter.Section("Installed Skills")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tVERSION\tUPDATED\tSOURCE")
	for _, item := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Name, item.Entry.ShortVersion(), updatedLabel(item.Entry), item.Entry.Source)
	}
	return tw.Flush()
}

// updatedLabel renders updated_at as a date, or "-" when it is missing or unparsable.
func updatedLabel(e registry.Entry) string {
	t, err := registry.ParseTimestamp(e.UpdatedAt)
	if err != nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func checkSkills(ctx context.Context, m *manager.Manager) error {
	presenter.Info("Checking for updates...")
	statuses, err := m.Check(ctx)
	if err != nil {
		return err
	}

	var names []string
	for _, st := range statuses {
		switch st.State {
		case manager.StateSkipped, manager.StateFailed:
			presenter.Warning(st.Line())
		default:
			presenter.Info(st.Line())
		}
		if st.State == manager.StateAvailable {
			names = append(names, st.Name)
		}
	}

	if len(names) == 0 {
		presenter.Success("All skills are up to date.")
		return nil
	}
	presenter.Warning(fmt.Sprintf("Updates available for: %s", strings.Join(names, ", ")))
	presenter.Info("Run 'skills4ai manage update <name>' to update.")
	return nil
}

func updateSkill(ctx context.Context, m *manager.Manager, name string, force bool) error {
	if !force && !presenter.Confirm(fmt.Sprintf("Update '%s' from its recorded source?", name)) {
		presenter.Warning("Update cancelled.")
		return nil
	}

	result, err := m.Update(ctx, name)
	if errors.Is(err, manager.ErrNotUpdatable) {
		presenter.Warning(fmt.Sprintf("Skipping %s: Local skill or no source URL.", name))
		return nil
	}
	if err != nil {
		return err
	}

	for _, w := range result.Warnings {
		presenter.Warning(w.Error())
	}
	presenter.Success(fmt.Sprintf("Successfully updated %s.", name))
	return nil
}
