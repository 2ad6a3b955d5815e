package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docmeta/internal/config"
	"github.com/mvp-joe/docmeta/internal/logging"
)

var (
	dirFlag       string
	verbose       bool
	logLevelFlag  string
	logFormatFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docmeta",
	Short: "Docmeta - documentation comments for code-structure metadata",
	Long: `Docmeta rewrites batches of code-structure metadata (classes, functions,
nested types) so that each node's Content holds only the documentation
comments of its source, ready for doc-generation and summarization tools.

Settings come from .docmeta/config.yml in the project directory, DOCMETA_*
environment variables, and command-line flags, in increasing precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "C", "", "project directory holding .docmeta/config.yml (default is the working directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "log format: text, json")
}

// environment is what every command needs: the project root, the merged
// configuration and a logger built from it.
type environment struct {
	rootDir string
	cfg     *config.Config
	logger  *slog.Logger
}

// loadEnvironment loads the configuration of the project directory and
// applies the persistent flags on top of it. overrides, if set, applies
// command-specific flags before the configuration is validated again.
func loadEnvironment(logOut io.Writer, overrides func(*config.Config)) (*environment, error) {
	rootDir := dirFlag
	if rootDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		rootDir = wd
	}

	rootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	cfg, err := config.LoadConfigFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if logLevelFlag != "" {
		cfg.Logging.Level = logLevelFlag
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logFormatFlag != "" {
		cfg.Logging.Format = logFormatFlag
	}
	if overrides != nil {
		overrides(cfg)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &environment{rootDir: rootDir, cfg: cfg, logger: logger}, nil
}

// resolve makes a configured path absolute against the project root.
func (e *environment) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.rootDir, path)
}
