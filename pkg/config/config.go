// Package config loads skills4ai settings from flags, SKILLS4AI_* environment
// variables and an optional skills4ai.yaml, in that order of precedence.
package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by viper.
	EnvPrefix = "SKILLS4AI"
	// FileName is the config file base name, searched in "." and $HOME/.config/skills4ai.
	FileName = "skills4ai"

	RegistryFile = "skills.json"
	SkillMapFile = "skill_map.json"
	JournalFile  = "skills_update.log"
	BackupsDir   = "backups"
)

// Config is the decoded configuration.
type Config struct {
	SkillsDir  string `mapstructure:"skills_dir"`
	GitHubURL  string `mapstructure:"github_url"`
	BackupsDir string `mapstructure:"backups_dir"`
	LogFile    string `mapstructure:"log_file"`
	LogLevel   string `mapstructure:"log_level"`
	LogFormat  string `mapstructure:"log_format"`
	ASCIIIcons bool   `mapstructure:"ascii_icons"`
	NoColor    bool   `mapstructure:"no_color"`

	Clone  CloneConfig  `mapstructure:"clone"`
	Backup BackupConfig `mapstructure:"backup"`
	Audit  AuditConfig  `mapstructure:"audit"`
	Render RenderConfig `mapstructure:"render"`
}

// CloneConfig bounds git clone retries.
type CloneConfig struct {
	Attempts uint          `mapstructure:"attempts"`
	Delay    time.Duration `mapstructure:"delay"`
}

// BackupConfig controls archive retention.
type BackupConfig struct {
	Keep int `mapstructure:"keep"`
}

// AuditConfig holds the default audit level.
type AuditConfig struct {
	Level string `mapstructure:"level"`
}

// RenderConfig holds renderer settings.
type RenderConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("skills_dir", filepath.Join(".trae", "skills"))
	v.SetDefault("github_url", "https://github.com")
	v.SetDefault("backups_dir", "")
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "warn")
	v.SetDefault("log_format", "fmt")
	v.SetDefault("ascii_icons", false)
	v.SetDefault("no_color", false)
	v.SetDefault("clone.attempts", 3)
	v.SetDefault("clone.delay", time.Second)
	v.SetDefault("backup.keep", 5)
	v.SetDefault("audit.level", "standard")
	v.SetDefault("render.timeout", 60*time.Second)
}

// Init prepares v: defaults, environment binding and the optional config
// file. A missing config file is not an error; a malformed one is.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// GITHUB_URL redirects short-form sources to a mirror.
	if err := v.BindEnv("github_url", EnvPrefix+"_GITHUB_URL", "GITHUB_URL"); err != nil {
		return errors.Wrap(err, "failed to bind GITHUB_URL")
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/skills4ai")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load decodes v into a Config and fills derived paths.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}

	cfg.GitHubURL = strings.TrimRight(cfg.GitHubURL, "/")
	if cfg.BackupsDir == "" {
		cfg.BackupsDir = filepath.Join(cfg.SkillsDir, BackupsDir)
	}
	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.SkillsDir, JournalFile)
	}
	if cfg.Clone.Attempts == 0 {
		cfg.Clone.Attempts = 1
	}

	return &cfg, nil
}

// RegistryPath is the path of skills.json inside skillsDir.
func RegistryPath(skillsDir string) string {
	return filepath.Join(skillsDir, RegistryFile)
}

// SkillMapPath is the path of skill_map.json inside skillsDir.
func SkillMapPath(skillsDir string) string {
	return filepath.Join(skillsDir, SkillMapFile)
}
