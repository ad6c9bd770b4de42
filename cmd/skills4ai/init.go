package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/kinntalk/skills4ai/pkg/presenter"
	"github.com/kinntalk/skills4ai/pkg/scaffold"
	"github.com/kinntalk/skills4ai/pkg/skills"
)

var initCmd = &cobra.Command{
	Use:   "init <skill-name> --path <dir>",
	Short: "Create a new skill from the template",
	Long: `Create a new skill folder with SKILL.md, example scripts, references and
assets, and register it in skills.json and skill_map.json.

Examples:
  skills4ai init data-analyzer --path .trae/skills`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path, _ := cmd.Flags().GetString("path")
		if err := initSkill(cmd.Context(), args[0], path); err != nil {
			presenter.Error(err, "Failed to create skill")
			if errors.Is(err, skills.ErrInvalidName) {
				presenter.Info("Skill name requirements:")
				for _, rule := range presenter.Msgs().NameRules {
					presenter.Detail(rule)
				}
			}
			os.Exit(1)
		}
	},
}

func init() {
	initCmd.Flags().String("path", "", "Directory the skill folder is created in")
	initCmd.MarkFlagRequired("path")
	rootCmd.AddCommand(initCmd)
}

func initSkill(ctx context.Context, name, path string) error {
	presenter.Info(fmt.Sprintf("Initializing skill: %s", name))
	presenter.Info(fmt.Sprintf("   Location: %s", path))

	result, err := scaffold.New().Create(ctx, name, path)
	if err != nil {
		return err
	}

	for _, f := range result.Files {
		presenter.Success(fmt.Sprintf("Created %s", f))
	}
	for _, w := range result.Warnings {
		presenter.Warning(w.Error())
	}

	presenter.Success(fmt.Sprintf("Skill '%s' initialized successfully at %s", name, result.Dir))
	presenter.Info("")
	presenter.Info("Next steps:")
	for _, step := range presenter.Msgs().InitNextSteps {
		presenter.Info(step)
	}
	return nil
}
