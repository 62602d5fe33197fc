package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

const (
	// ConfigName is the config file name looked up in the working directory
	ConfigName = ".subsync"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "SUBSYNC"
)

type Config struct {
	GitPath        string        `mapstructure:"git_path"`
	RepoPath       string        `mapstructure:"repo_path"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	StateDir       string        `mapstructure:"state_dir"`
	LogLevel       string        `mapstructure:"log_level"`
	Journal        bool          `mapstructure:"journal"`
	GitToken       string        `mapstructure:"git_token"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		GitPath:        "git",
		RepoPath:       ".",
		CommandTimeout: 5 * time.Minute,
		StateDir:       ".subsync-state",
		LogLevel:       "info",
		Journal:        true,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GitPath) == "" {
		return fmt.Errorf("git_path cannot be empty")
	}
	if strings.TrimSpace(c.RepoPath) == "" {
		return fmt.Errorf("repo_path cannot be empty")
	}
	if c.CommandTimeout <= 0 {
		return fmt.Errorf("command_timeout must be positive, got %s", c.CommandTimeout)
	}
	if err := ValidateStateDir(c.StateDir); err != nil {
		return fmt.Errorf("invalid state_dir: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// ValidateStateDir rejects journal directories that escape the repository
func ValidateStateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("state directory cannot be empty")
	}
	if filepath.IsAbs(dir) {
		return nil
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == ".." {
			return fmt.Errorf("state directory contains invalid path traversal")
		}
	}
	return nil
}

// LoadConfig reads .subsync.yaml from the working directory, or configFile when
// set, then applies SUBSYNC_* environment overrides.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	// Configure environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// BindEnv allows multiple env vars - it will check them in order
	if err := v.BindEnv("git_token", "SUBSYNC_GIT_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind git_token env: %w", err)
	}
	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("git_path", defaults.GitPath)
	v.SetDefault("repo_path", defaults.RepoPath)
	v.SetDefault("command_timeout", defaults.CommandTimeout)
	v.SetDefault("state_dir", defaults.StateDir)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("journal", defaults.Journal)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}
