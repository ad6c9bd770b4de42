package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/audit"
	"github.com/kinntalk/skills4ai/pkg/installer"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

type InstallConfig struct {
	Path    string
	NoAudit bool
	Force   bool
}

func NewInstallConfig() *InstallConfig {
	return &InstallConfig{
		Path:    "",
		NoAudit: false,
		Force:   false,
	}
}

var installCmd = &cobra.Command{
	Use:   "install <source>",
	Short: "Install a skill from a git repository",
	Long: `Install a skill from a git repository into the skills directory.

The source can be:
  - a repository URL: https://github.com/user/repo
  - a folder in a repository: https://github.com/user/repo/tree/main/skills/pdf
  - a short form: user/repo or user/repo/path/to/skill

Short forms are resolved against GITHUB_URL (default https://github.com).

Examples:
  skills4ai install user/skills/pdf-generation
  skills4ai install https://github.com/user/repo --force --no-audit`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := getInstallConfigFromFlags(cmd)
		if err := installSkill(cmd.Context(), args[0], config); err != nil {
			if errors.Is(err, installer.ErrAborted) {
				presenter.Warning("Installation aborted.")
			} else {
				presenter.Error(err, "Failed to install skill")
			}
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewInstallConfig()
	installCmd.Flags().String("path", defaults.Path, "Destination skills directory (default from config)")
	installCmd.Flags().Bool("no-audit", defaults.NoAudit, "Skip the audit after installing")
	installCmd.Flags().Bool("force", defaults.Force, "Overwrite an existing skill without asking")
	rootCmd.AddCommand(installCmd)
}

func getInstallConfigFromFlags(cmd *cobra.Command) *InstallConfig {
	config := NewInstallConfig()
	if cfg != nil {
		config.Path = cfg.SkillsDir
	}
	if path, err := cmd.Flags().GetString("path"); err == nil && path != "" {
		config.Path = path
	}
	if noAudit, err := cmd.Flags().GetBool("no-audit"); err == nil {
		config.NoAudit = noAudit
	}
	if force, err := cmd.Flags().GetBool("force"); err == nil {
		config.Force = force
	}
	return config
}

func installSkill(ctx context.Context, source string, config *InstallConfig) error {
	level, err := audit.ParseLevel(cfg.Audit.Level)
	if err != nil {
		return err
	}

	presenter.Info(fmt.Sprintf("Installing skill from %s...", source))
	inst := installer.New(cfg, presenter.Default())
	result, err := inst.Install(ctx, source, installer.Options{
		Dest:       config.Path,
		Force:      config.Force,
		Audit:      !config.NoAudit,
		AuditLevel: level,
	})
	if err != nil {
		return err
	}

	if result.Relocated {
		presenter.Warning(fmt.Sprintf("Subdirectory not found where expected, installed from '%s'", result.Subdir))
	}
	if result.Audit != nil {
		audit.Print(presenter.Default(), result.Audit, false)
	}
	for _, w := range result.Warnings {
		presenter.Warning(w.Error())
	}
	presenter.Success(fmt.Sprintf("Successfully installed %s to %s", result.Name, result.Path))
	return nil
}
