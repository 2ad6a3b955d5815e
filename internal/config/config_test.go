package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docmeta/internal/comments"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - LoadConfig() uses defaults when no config file exists
// - LoadConfig() loads from .docmeta/config.yml when present
// - LoadConfig() loads from .docmeta/config.yaml when present
// - LoadConfig() merges config file with defaults
// - Environment variables override config file values
// - Environment variables override defaults when no config file exists
// - LoadConfig() returns error for malformed YAML
// - LoadConfig() returns error for invalid configuration values
// - Validate() rejects unknown language and strategy names
// - Validate() rejects negative workers, empty patterns, unknown format
// - Validate() rejects enabled storage without a path
// - Validate() rejects unknown logging level/format
// - Validate() normalizes case
// - Validate() returns multiple errors for multiple invalid fields
// - Extractor() and DriverOptions() reflect the loaded settings

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".docmeta")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "java", cfg.Extraction.Language)
	assert.Equal(t, "syntax", cfg.Extraction.Strategy)
	assert.Equal(t, 0, cfg.Concurrency.Workers)
	assert.Equal(t, []string{"**/*.json"}, cfg.Input.Patterns)
	assert.NotEmpty(t, cfg.Input.Ignore)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, ".docmeta/results.db", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  language: python
  strategy: lexical

concurrency:
  workers: 4

input:
  patterns:
    - "batches/**/*.json"
  ignore:
    - "tmp/**"

output:
  format: yaml
  dir: out

storage:
  enabled: true
  path: /tmp/docmeta.db

logging:
  level: debug
  format: json
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "python", cfg.Extraction.Language)
	assert.Equal(t, "lexical", cfg.Extraction.Strategy)
	assert.Equal(t, 4, cfg.Concurrency.Workers)
	assert.Equal(t, []string{"batches/**/*.json"}, cfg.Input.Patterns)
	assert.Equal(t, []string{"tmp/**"}, cfg.Input.Ignore)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/tmp/docmeta.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
extraction:
  language: rust
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, "rust", cfg.Extraction.Language)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
output:
  format: yaml
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, "java", cfg.Extraction.Language)
	assert.Equal(t, "syntax", cfg.Extraction.Strategy)
	assert.Equal(t, []string{"**/*.json"}, cfg.Input.Patterns)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  language: python
  strategy: lexical
concurrency:
  workers: 2
`)

	t.Setenv("DOCMETA_EXTRACTION_LANGUAGE", "ruby")
	t.Setenv("DOCMETA_CONCURRENCY_WORKERS", "8")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "ruby", cfg.Extraction.Language)
	assert.Equal(t, 8, cfg.Concurrency.Workers)

	// Not overridden, comes from the file
	assert.Equal(t, "lexical", cfg.Extraction.Strategy)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()

	tempDir := t.TempDir()

	t.Setenv("DOCMETA_OUTPUT_FORMAT", "YAML")
	t.Setenv("DOCMETA_STORAGE_ENABLED", "true")
	t.Setenv("DOCMETA_STORAGE_PATH", "/custom/results.db")
	t.Setenv("DOCMETA_LOGGING_LEVEL", "warn")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.Output.Format, "enumerated values are normalized")
	assert.True(t, cfg.Storage.Enabled)
	assert.Equal(t, "/custom/results.db", cfg.Storage.Path)
	assert.Equal(t, "warn", cfg.Logging.Level)

	assert.Equal(t, "java", cfg.Extraction.Language)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  language: "unclosed quote
  strategy: [
`)

	cfg, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
extraction:
  language: cobol
concurrency:
  workers: -3
`)

	cfg, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"unknown language", func(c *Config) { c.Extraction.Language = "cobol" }, ErrInvalidLanguage},
		{"empty language", func(c *Config) { c.Extraction.Language = "" }, ErrInvalidLanguage},
		{"unknown strategy", func(c *Config) { c.Extraction.Strategy = "magic" }, ErrInvalidStrategy},
		{"empty strategy", func(c *Config) { c.Extraction.Strategy = "" }, ErrInvalidStrategy},
		{"negative workers", func(c *Config) { c.Concurrency.Workers = -1 }, ErrInvalidWorkers},
		{"no patterns", func(c *Config) { c.Input.Patterns = nil }, ErrEmptyPatterns},
		{"blank pattern", func(c *Config) { c.Input.Patterns = []string{""} }, ErrEmptyPatterns},
		{"unknown format", func(c *Config) { c.Output.Format = "xml" }, ErrInvalidFormat},
		{"storage without path", func(c *Config) { c.Storage.Enabled = true; c.Storage.Path = "" }, ErrInvalidStorage},
		{"unknown level", func(c *Config) { c.Logging.Level = "loud" }, ErrInvalidLogging},
		{"unknown log format", func(c *Config) { c.Logging.Format = "xml" }, ErrInvalidLogging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_StorageDisabledNeedsNoPath(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Storage.Path = ""
	assert.NoError(t, Validate(cfg))
}

func TestValidate_NormalizesCase(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extraction.Language = " TypeScript "
	cfg.Extraction.Strategy = "LEXICAL"
	cfg.Logging.Level = "DEBUG"

	require.NoError(t, Validate(cfg))
	assert.Equal(t, "typescript", cfg.Extraction.Language)
	assert.Equal(t, "lexical", cfg.Extraction.Strategy)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extraction.Language = "cobol"
	cfg.Concurrency.Workers = -1
	cfg.Output.Format = "xml"

	err := Validate(cfg)
	require.Error(t, err)

	errMsg := err.Error()
	assert.Contains(t, errMsg, "validation failed")
	assert.Contains(t, errMsg, "Workers")
	assert.Contains(t, errMsg, "Format")
	assert.Contains(t, errMsg, "cobol")

	assert.ErrorIs(t, err, ErrInvalidLanguage)
	assert.ErrorIs(t, err, ErrInvalidWorkers)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestConfig_ExtractorAndDriverOptions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Extraction.Language = "python"
	cfg.Extraction.Strategy = "lexical"
	cfg.Concurrency.Workers = 3

	ex, err := cfg.Extractor()
	require.NoError(t, err)
	assert.Equal(t, comments.Python, ex.Language())
	assert.Equal(t, comments.Lexical, ex.Strategy())

	assert.Equal(t, 3, cfg.DriverOptions().Workers)
}
