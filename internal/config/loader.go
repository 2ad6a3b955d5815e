package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (DOCMETA_*)
// 2. Config file (.docmeta/config.yml or .docmeta/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".docmeta")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// DOCMETA_EXTRACTION_LANGUAGE overrides extraction.language, etc.
	v.SetEnvPrefix("DOCMETA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Extraction
	v.BindEnv("extraction.language")
	v.BindEnv("extraction.strategy")

	// Concurrency
	v.BindEnv("concurrency.workers")

	// Output
	v.BindEnv("output.format")
	v.BindEnv("output.dir")

	// Storage
	v.BindEnv("storage.enabled")
	v.BindEnv("storage.path")

	// Logging
	v.BindEnv("logging.level")
	v.BindEnv("logging.format")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - defaults + env vars apply
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("extraction.language", defaults.Extraction.Language)
	v.SetDefault("extraction.strategy", defaults.Extraction.Strategy)

	v.SetDefault("concurrency.workers", defaults.Concurrency.Workers)

	v.SetDefault("input.patterns", defaults.Input.Patterns)
	v.SetDefault("input.ignore", defaults.Input.Ignore)

	v.SetDefault("output.format", defaults.Output.Format)
	v.SetDefault("output.dir", defaults.Output.Dir)

	v.SetDefault("storage.enabled", defaults.Storage.Enabled)
	v.SetDefault("storage.path", defaults.Storage.Path)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
