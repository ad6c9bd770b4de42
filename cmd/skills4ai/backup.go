package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/backup"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create, list, restore and prune skill backups",
	Long: `Back up skills to timestamped zip archives in the backups directory and
restore them.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

var backupCreateCmd = &cobra.Command{
	Use:     "create",
	Aliases: []string{"backup"},
	Short:   "Archive one skill or every registered skill",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		skill, _ := cmd.Flags().GetString("skill")
		output, _ := cmd.Flags().GetString("output")
		if err := createBackup(cmd.Context(), backup.New(cfg, presenter.Default()), skill, output); err != nil {
			presenter.Error(err, "Failed to create backup")
			os.Exit(1)
		}
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups, newest first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		if err := listBackups(cmd.OutOrStdout(), backup.New(cfg, presenter.Default())); err != nil {
			presenter.Error(err, "Failed to list backups")
			os.Exit(1)
		}
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <backup_file>",
	Short: "Restore skills from a backup archive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		skill, _ := cmd.Flags().GetString("skill")
		force, _ := cmd.Flags().GetBool("force")
		if err := restoreBackup(cmd.Context(), backup.New(cfg, presenter.Default()), args[0], skill, force); err != nil {
			if errors.Is(err, backup.ErrAborted) {
				presenter.Warning("Restore cancelled.")
			} else {
				presenter.Error(err, "Failed to restore backup")
			}
			os.Exit(1)
		}
	},
}

var backupCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all but the most recent backups",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		keep := cfg.Backup.Keep
		if cmd.Flags().Changed("keep") {
			keep, _ = cmd.Flags().GetInt("keep")
		}
		skill, _ := cmd.Flags().GetString("skill")
		if err := cleanupBackups(cmd.Context(), backup.New(cfg, presenter.Default()), keep, skill); err != nil {
			presenter.Error(err, "Failed to clean up backups")
			os.Exit(1)
		}
	},
}

func init() {
	backupCreateCmd.Flags().StringP("skill", "s", "", "Back up only this skill")
	backupCreateCmd.Flags().StringP("output", "o", "", "Output directory (default: backups directory)")

	backupRestoreCmd.Flags().StringP("skill", "s", "", "Restore only this skill")
	backupRestoreCmd.Flags().BoolP("force", "f", false, "Overwrite without asking")

	backupCleanupCmd.Flags().IntP("keep", "k", 5, "Number of backups to keep")
	backupCleanupCmd.Flags().StringP("skill", "s", "", "Only prune this skill's backups")

	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
	backupCmd.AddCommand(backupRestoreCmd)
	backupCmd.AddCommand(backupCleanupCmd)
	rootCmd.AddCommand(backupCmd)
}

func createBackup(ctx context.Context, m *backup.Manager, skill, output string) error {
	if skill != "" {
		presenter.Info(fmt.Sprintf("Backing up skill: %s", skill))
	} else {
		presenter.Info("Backing up all skills...")
	}

	archive, err := m.Create(ctx, skill, output)
	if err != nil {
		return err
	}
	presenter.Success(fmt.Sprintf("Backup created: %s", archive.Path))
	presenter.Info(fmt.Sprintf("   Size: %.2f MB", archive.SizeMB()))
	return nil
}

func listBackups(w io.Writer, m *backup.Manager) error {
	archives, err := m.List()
	if err != nil {
		return err
	}
	if len(archives) == 0 {
		presenter.Info("No backups found.")
		return nil
	}

	presenter.Section("Available Backups")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIZE\tMODIFIED")
	for _, a := range archives {
		fmt.Fprintf(tw, "%s\t%.2f MB\t%s\n", a.Name, a.SizeMB(), a.ModTime.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func restoreBackup(ctx context.Context, m *backup.Manager, file, skill string, force bool) error {
	restored, err := m.Restore(ctx, file, skill, force)
	if err != nil {
		return err
	}
	if skill != "" {
		presenter.Success(fmt.Sprintf("Restored %s", skill))
		return nil
	}
	presenter.Success(fmt.Sprintf("Restored all skills (%d)", len(restored)))
	return nil
}

func cleanupBackups(ctx context.Context, m *backup.Manager, keep int, skill string) error {
	removed, err := m.Cleanup(ctx, keep, skill)
	for _, name := range removed {
		presenter.Success(fmt.Sprintf("Removed: %s", name))
	}
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		presenter.Info("No old backups to clean up.")
	}
	return nil
}
