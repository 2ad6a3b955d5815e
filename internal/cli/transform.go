package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/config"
	"github.com/mvp-joe/docmeta/internal/discovery"
	"github.com/mvp-joe/docmeta/internal/storage"
	"github.com/mvp-joe/docmeta/internal/watcher"
)

var (
	languageFlag   string
	strategyFlag   string
	workersFlag    int
	sequentialFlag bool
	formatFlag     string
	outFlag        string
	storeFlag      bool
	quietFlag      bool
	watchFlag      bool
)

// transformCmd represents the transform command
var transformCmd = &cobra.Command{
	Use:   "transform [files...]",
	Short: "Replace node content with its documentation comments",
	Long: `Transform reads batch files of code-structure metadata (a JSON array of
structure records, or a single record) and writes a copy in which every
Content field holds only the documentation comments of its source.

Without arguments, batch files are discovered under the project directory
using input.patterns and input.ignore from the configuration.

Output goes to <name>.docmeta.<format> next to each input, or into --out.
With --store, results are also recorded in the SQLite result store.

Examples:
  # Transform every discovered batch with the configured language
  docmeta transform

  # Transform one Python batch with the lexical extractor, print YAML
  docmeta transform --language python --strategy lexical --format yaml --out - batch.json

  # Keep transforming batch files as they are written
  docmeta transform --watch
`,
	RunE: runTransform,
}

func init() {
	rootCmd.AddCommand(transformCmd)
	transformCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "source language of the Content fields")
	transformCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "extraction strategy: lexical or syntax")
	transformCmd.Flags().IntVarP(&workersFlag, "workers", "j", -1, "roots transformed concurrently (0 = one per CPU)")
	transformCmd.Flags().BoolVar(&sequentialFlag, "sequential", false, "transform roots one at a time (same as --workers 1)")
	transformCmd.Flags().StringVarP(&formatFlag, "format", "f", "", "output format: json or yaml")
	transformCmd.Flags().StringVarP(&outFlag, "out", "o", "", "output directory, or - for stdout")
	transformCmd.Flags().BoolVar(&storeFlag, "store", false, "record results in the result store")
	transformCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	transformCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for new or changed batch files and transform them")
}

// applyTransformFlags layers the transform flags over the loaded configuration.
func applyTransformFlags(cfg *config.Config) {
	if languageFlag != "" {
		cfg.Extraction.Language = languageFlag
	}
	if strategyFlag != "" {
		cfg.Extraction.Strategy = strategyFlag
	}
	if workersFlag >= 0 {
		cfg.Concurrency.Workers = workersFlag
	}
	if sequentialFlag {
		cfg.Concurrency.Workers = 1
	}
	if formatFlag != "" {
		cfg.Output.Format = formatFlag
	}
	if outFlag != "" {
		cfg.Output.Dir = outFlag
	}
	if storeFlag {
		cfg.Storage.Enabled = true
	}
}

func runTransform(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, err := loadEnvironment(os.Stderr, applyTransformFlags)
	if err != nil {
		return err
	}
	cfg := env.cfg

	if watchFlag && len(args) > 0 {
		return fmt.Errorf("--watch discovers its own inputs; do not pass files")
	}
	if watchFlag && cfg.Output.Dir == stdoutDir {
		return fmt.Errorf("--watch cannot write to stdout")
	}

	extractor, err := cfg.Extractor()
	if err != nil {
		return err
	}

	format, err := codemeta.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	outDir := cfg.Output.Dir
	if outDir != stdoutDir {
		outDir = env.resolve(outDir)
	}

	var writer *storage.ResultWriter
	if cfg.Storage.Enabled {
		db, err := storage.Open(env.resolve(cfg.Storage.Path))
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer db.Close()
		writer = storage.NewResultWriter(db)
	}

	// Progress output would interleave with batches written to stdout.
	quiet := quietFlag || outDir == stdoutDir
	progress := NewCLIProgressReporter(os.Stderr, quiet)

	runner := newBatchRunner(runnerOptions{
		Extractor: extractor,
		Driver:    cfg.DriverOptions(),
		Format:    format,
		OutDir:    outDir,
		Writer:    writer,
		Progress:  progress,
		Logger:    env.logger,
	})

	disc, err := discovery.New(env.rootDir, cfg.Input.Patterns, cfg.Input.Ignore)
	if err != nil {
		return fmt.Errorf("failed to create discovery: %w", err)
	}

	files := args
	if len(files) == 0 {
		files, err = disc.Discover()
		if err != nil {
			return err
		}
		files = slices.DeleteFunc(files, isOutputFile)
	}

	var fw watcher.FileWatcher
	if watchFlag {
		// Watch before the first run so that edits made during it are not
		// missed. They accumulate while paused.
		fw, err = startWatcher(ctx, env, disc, runner)
		if err != nil {
			return err
		}
		defer fw.Stop()
		fw.Pause()
	}

	progress.OnDiscoveryComplete(len(files))
	summary, err := runner.runFiles(ctx, files)
	if err != nil {
		return err
	}
	progress.OnComplete(summary)

	if fw == nil {
		return nil
	}

	env.logger.Info("watching for batch file changes", slog.String("dir", env.rootDir))
	fw.Resume()
	<-ctx.Done()
	env.logger.Info("stopping watch mode")
	return nil
}

// startWatcher starts re-running the transform for every batch file created
// or rewritten under the project directory until ctx is cancelled.
func startWatcher(ctx context.Context, env *environment, disc *discovery.BatchDiscovery, runner *batchRunner) (watcher.FileWatcher, error) {
	fw, err := watcher.NewFileWatcher([]string{env.rootDir}, watcher.Options{
		Filter: batchFilter(disc),
		Logger: env.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	err = fw.Start(ctx, func(files []string) {
		summary, err := runner.runFiles(ctx, files)
		if err != nil {
			env.logger.Error("transform failed", slog.Any("error", err))
			return
		}
		env.logger.Info("transformed changed batch files",
			slog.Int("files", summary.Files),
			slog.Int("roots", summary.Stats.Roots),
			slog.Int("diagnostics", summary.Diagnostics))
	})
	if err != nil {
		fw.Stop()
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	return fw, nil
}

// batchFilter accepts absolute paths whose root-relative form discovery
// would have picked up. Generated outputs are never inputs.
func batchFilter(disc *discovery.BatchDiscovery) func(string) bool {
	return func(path string) bool {
		if isOutputFile(path) {
			return false
		}
		rel, err := filepath.Rel(disc.RootDir(), path)
		if err != nil {
			return false
		}
		return disc.Matches(filepath.ToSlash(rel))
	}
}
