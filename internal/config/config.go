// Package config loads docmeta settings from .docmeta/config.yml with
// environment variable overrides (DOCMETA_*).
//
// Priority, highest first:
//  1. Environment variables (DOCMETA_EXTRACTION_LANGUAGE, ...)
//  2. Config file (.docmeta/config.yml or .docmeta/config.yaml)
//  3. Built-in defaults
//
// Command-line flags are applied on top by the CLI.
package config

// Config represents the complete docmeta configuration.
type Config struct {
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Storage     StorageConfig     `yaml:"storage" mapstructure:"storage"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ExtractionConfig selects the comment extractor bound for a batch.
type ExtractionConfig struct {
	Language string `yaml:"language" mapstructure:"language" validate:"required"` // e.g. "java", "python"
	Strategy string `yaml:"strategy" mapstructure:"strategy" validate:"required"` // "lexical" or "syntax"
}

// ConcurrencyConfig bounds the worker pool of the driver.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0"` // 0 means one per CPU
}

// InputConfig defines which batch files are picked up.
type InputConfig struct {
	Patterns []string `yaml:"patterns" mapstructure:"patterns" validate:"min=1,dive,required"` // glob patterns for batch files
	Ignore   []string `yaml:"ignore" mapstructure:"ignore"`                                  // glob patterns to skip
}

// OutputConfig defines where transformed batches are written.
type OutputConfig struct {
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json yaml"`
	Dir    string `yaml:"dir" mapstructure:"dir"` // empty means next to the input file
}

// StorageConfig controls the optional SQLite result store.
type StorageConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path" validate:"required_if=Enabled true"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Language: "java",
			Strategy: "syntax",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 0,
		},
		Input: InputConfig{
			Patterns: []string{"**/*.json"},
			Ignore: []string{
				".docmeta/**",
				".git/**",
				"node_modules/**",
				"**/*.docmeta.json",
				"**/*.docmeta.yaml",
			},
		},
		Output: OutputConfig{
			Format: "json",
			Dir:    "",
		},
		Storage: StorageConfig{
			Enabled: false,
			Path:    ".docmeta/results.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
