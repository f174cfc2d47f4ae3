package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// AppName names the per-user config directory.
	AppName = "stars"
	// LocalConfigFile is the project-local config filename, read from the
	// working directory.
	LocalConfigFile = "stars.local.toml"
	// GlobalConfigFile is the per-user config filename inside Dir().
	GlobalConfigFile = "config.toml"
	// EnvPrefix prefixes environment overrides (STARS_DRY_RUN, ...).
	EnvPrefix = "STARS"
)

// EnvFiles are loaded into the process environment before config
// resolution. Existing variables are never overridden.
var EnvFiles = []string{".env", ".env.local"}

// Config is the resolved run configuration. It is resolved with Viper
// precedence: CLI flags > environment > stars.local.toml >
// <config dir>/config.toml > defaults.
type Config struct {
	Disable     []string `toml:"disable,omitempty" mapstructure:"disable"`
	DryRun      bool     `toml:"dry_run" mapstructure:"dry_run"`
	Quiet       bool     `toml:"quiet" mapstructure:"quiet"`
	Verbose     bool     `toml:"verbose" mapstructure:"verbose"`
	IgnoreSaved bool     `toml:"ignore_saved" mapstructure:"ignore_saved"`
	LogLevel    string   `toml:"log_level,omitempty" mapstructure:"log_level"`

	GitHub GitHubConfig `toml:"github" mapstructure:"github"`
	GitLab GitLabConfig `toml:"gitlab" mapstructure:"gitlab"`
}

// GitHubConfig carries optional GitHub credentials. When both are set the
// github target skips its interactive prompt.
type GitHubConfig struct {
	Username string `toml:"username,omitempty" mapstructure:"username"`
	Token    string `toml:"token,omitempty" mapstructure:"token"`
}

// GitLabConfig carries an optional GitLab personal access token.
type GitLabConfig struct {
	Token string `toml:"token,omitempty" mapstructure:"token"`
}

// flagKeys maps config keys to the CLI flags that override them.
var flagKeys = map[string]string{
	"disable":      "disable",
	"dry_run":      "dry-run",
	"quiet":        "quiet",
	"verbose":      "verbose",
	"ignore_saved": "ignore-saved",
	"log_level":    "log-level",
}

// envAliases lists well-known variables accepted besides the STARS_ ones.
var envAliases = map[string][]string{
	"github.username": {"STARS_GITHUB_USERNAME", "GITHUB_USER"},
	"github.token":    {"STARS_GITHUB_TOKEN", "GITHUB_TOKEN"},
	"gitlab.token":    {"STARS_GITLAB_TOKEN", "GITLAB_TOKEN"},
}

// Load resolves configuration. configFile, when non-empty, replaces the
// per-user config file. flags may be nil.
func Load(flags *pflag.FlagSet, configFile string) (*Config, error) {
	globalPath := configFile
	if globalPath == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		globalPath = filepath.Join(dir, GlobalConfigFile)
	}

	for _, f := range EnvFiles {
		// Missing .env files are the common case.
		_ = godotenv.Load(f)
	}

	return load(flags, globalPath, LocalConfigFile, configFile != "")
}

// load is the internal implementation that accepts explicit paths, making it
// testable without touching the real home directory. When requireGlobal is
// set a missing global file is an error.
func load(flags *pflag.FlagSet, globalPath, localPath string, requireGlobal bool) (*Config, error) {
	v := viper.New()
	v.SetConfigType("toml")

	v.SetDefault("disable", []string{})
	v.SetDefault("dry_run", false)
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)
	v.SetDefault("ignore_saved", false)
	v.SetDefault("log_level", "")

	// Lowest priority: global config
	v.SetConfigFile(globalPath)
	if err := v.ReadInConfig(); err != nil {
		if requireGlobal || !isNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", globalPath, err)
		}
	}

	// Project-local config
	if _, err := os.Stat(localPath); err == nil {
		v.SetConfigFile(localPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", localPath, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, names := range envAliases {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	// Highest priority: CLI flags
	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Disabled reports whether name was listed in Disable.
func (c *Config) Disabled(name string) bool {
	for _, d := range c.Disable {
		if d == name {
			return true
		}
	}
	return false
}

// Redacted returns a copy with secrets masked, suitable for printing.
func (c *Config) Redacted() *Config {
	out := *c
	out.Disable = append([]string(nil), c.Disable...)
	if out.GitHub.Token != "" {
		out.GitHub.Token = "<redacted>"
	}
	if out.GitLab.Token != "" {
		out.GitLab.Token = "<redacted>"
	}
	return &out
}

func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

// Dir returns the per-user configuration directory (e.g. ~/.config/stars).
// It does not create it.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("determining config directory: %w", err)
	}
	return filepath.Join(base, AppName), nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}
