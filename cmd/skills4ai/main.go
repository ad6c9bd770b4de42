package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kinntalk/skills4ai/pkg/config"
	"github.com/kinntalk/skills4ai/pkg/logger"
	"github.com/kinntalk/skills4ai/pkg/presenter"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "skills4ai",
	Short: "Create, install, audit and maintain AI agent skills",
	Long: `skills4ai manages a directory of agent skills: it scaffolds and audits skill
folders, installs them from git repositories, keeps skills.json and skill_map.json
in sync, updates and backs them up, and renders Markdown to PNG or PDF.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initConfig()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func initConfig() error {
	if err := config.Init(viper.GetViper(), cfgFile); err != nil {
		return err
	}
	loaded, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	cfg = loaded

	if err := logger.SetLogLevel(cfg.LogLevel); err != nil {
		return err
	}
	logger.SetLogFormat(cfg.LogFormat)

	p := presenter.New()
	if cfg.NoColor {
		p = presenter.NewWithOptions(os.Stdout, os.Stderr, presenter.ColorNever)
	}
	p.SetMessages(presenter.SelectMessages(cfg.ASCIIIcons))
	presenter.SetDefault(p)

	logger.G(context.Background()).WithField("skills_dir", cfg.SkillsDir).Debug("configuration loaded")
	return nil
}

func main() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./skills4ai.yaml or $HOME/.config/skills4ai/skills4ai.yaml)")
	flags.String("skills-dir", "", "Skills directory (default .trae/skills)")
	flags.String("log-level", "", "Log level (panic, fatal, error, warn, info, debug, trace)")
	flags.String("log-format", "", "Log format (fmt or json)")
	flags.Bool("ascii", false, "Use plain-text status icons")
	flags.Bool("no-color", false, "Disable colored output")

	viper.BindPFlag("skills_dir", flags.Lookup("skills-dir"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("ascii_icons", flags.Lookup("ascii"))
	viper.BindPFlag("no_color", flags.Lookup("no-color"))

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
