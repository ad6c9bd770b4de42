package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/audit"
	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/osutil"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

type AuditConfig struct {
	Verbose bool
	JSON    bool
	Level   string
}

func NewAuditConfig() *AuditConfig {
	return &AuditConfig{
		Verbose: false,
		JSON:    false,
		Level:   "",
	}
}

var auditCmd = &cobra.Command{
	Use:   "audit <skill_path> [skills_dir]",
	Short: "Check a skill folder for structural and portability problems",
	Long: `Run the audit battery against a skill folder.

The registry check needs the directory holding skills.json. It defaults to the
skill's parent directory when that directory has a skills.json.

Levels:
  relaxed   core checks only
  standard  every check; only core failures are errors (default)
  strict    every check; every failure is an error`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		config := getAuditConfigFromFlags(cmd)
		skillsDir := ""
		if len(args) > 1 {
			skillsDir = args[1]
		}

		failed, err := auditSkill(cmd.Context(), cmd.OutOrStdout(), args[0], skillsDir, config)
		if err != nil {
			presenter.Error(err, "Audit failed")
			os.Exit(1)
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	defaults := NewAuditConfig()
	auditCmd.Flags().BoolP("verbose", "v", defaults.Verbose, "Show details for passing checks")
	auditCmd.Flags().BoolP("json", "j", defaults.JSON, "Print the report as JSON")
	auditCmd.Flags().StringP("level", "l", defaults.Level, "Audit level: strict, standard or relaxed (default from config)")
	rootCmd.AddCommand(auditCmd)
}

func getAuditConfigFromFlags(cmd *cobra.Command) *AuditConfig {
	config := NewAuditConfig()
	if cfg != nil {
		config.Level = cfg.Audit.Level
	}
	if verbose, err := cmd.Flags().GetBool("verbose"); err == nil {
		config.Verbose = verbose
	}
	if asJSON, err := cmd.Flags().GetBool("json"); err == nil {
		config.JSON = asJSON
	}
	if level, err := cmd.Flags().GetString("level"); err == nil && level != "" {
		config.Level = level
	}
	return config
}

// defaultAuditSkillsDir returns the parent of skillPath when it holds a registry.
func defaultAuditSkillsDir(skillPath string) string {
	abs, err := filepath.Abs(skillPath)
	if err != nil {
		return ""
	}
	parent := filepath.Dir(abs)
	if osutil.Exists(config.RegistryPath(parent)) {
		return parent
	}
	return ""
}

func auditSkill(ctx context.Context, w io.Writer, skillPath, skillsDir string, config *AuditConfig) (bool, error) {
	level, err := audit.ParseLevel(config.Level)
	if err != nil {
		return false, err
	}
	if skillsDir == "" {
		skillsDir = defaultAuditSkillsDir(skillPath)
	}

	report, err := audit.Run(ctx, skillPath, audit.Options{Level: level, SkillsDir: skillsDir})
	if err != nil {
		return false, err
	}

	if config.JSON {
		if err := audit.WriteJSON(w, report); err != nil {
			return false, err
		}
	} else {
		audit.Print(presenter.Default(), report, config.Verbose)
	}
	return report.Failed(), nil
}
