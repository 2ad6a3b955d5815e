package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/comments"
	"github.com/mvp-joe/docmeta/internal/logging"
	"github.com/mvp-joe/docmeta/internal/storage"
	"github.com/mvp-joe/docmeta/internal/transform"
)

// stdoutDir as the output directory writes every batch to stdout.
const stdoutDir = "-"

// outputSuffix marks generated files so discovery never picks them up again.
const outputSuffix = ".docmeta"

// batchRunner transforms batch files one after another. Roots inside a file
// are spread over the driver's workers.
type batchRunner struct {
	driver    *transform.Driver
	extractor comments.Extractor
	format    codemeta.Format
	outDir    string // "" writes next to the input, "-" writes to stdout
	stdout    io.Writer
	writer    *storage.ResultWriter // nil when storage is disabled
	progress  *CLIProgressReporter
	logger    *slog.Logger
}

// fileResult is what one batch file produced.
type fileResult struct {
	Input   string
	Output  string
	BatchID string
	Report  *transform.Report
}

// runSummary adds up the results of one run.
type runSummary struct {
	Files       int
	Stats       transform.Stats
	Diagnostics int
	Results     []*fileResult
}

func (s *runSummary) add(res *fileResult) {
	s.Files++
	s.Stats.Roots += res.Report.Stats.Roots
	s.Stats.Nodes += res.Report.Stats.Nodes
	s.Stats.Replaced += res.Report.Stats.Replaced
	s.Stats.Retained += res.Report.Stats.Retained
	s.Stats.Absent += res.Report.Stats.Absent
	s.Diagnostics += len(res.Report.Diagnostics)
	s.Results = append(s.Results, res)
}

type runnerOptions struct {
	Extractor comments.Extractor
	Driver    transform.Options
	Format    codemeta.Format
	OutDir    string
	Stdout    io.Writer
	Writer    *storage.ResultWriter
	Progress  *CLIProgressReporter
	Logger    *slog.Logger
}

func newBatchRunner(opts runnerOptions) *batchRunner {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Progress == nil {
		opts.Progress = NewCLIProgressReporter(io.Discard, true)
	}

	driverOpts := opts.Driver
	driverOpts.Logger = opts.Logger
	driverOpts.OnRootDone = opts.Progress.OnRootDone

	return &batchRunner{
		driver:    transform.NewDriver(opts.Extractor, driverOpts),
		extractor: opts.Extractor,
		format:    opts.Format,
		outDir:    opts.OutDir,
		stdout:    opts.Stdout,
		writer:    opts.Writer,
		progress:  opts.Progress,
		logger:    opts.Logger,
	}
}

// runFiles transforms every file. An unreadable or malformed file stops the
// run; per-node problems only show up in the reports.
func (r *batchRunner) runFiles(ctx context.Context, files []string) (*runSummary, error) {
	summary := &runSummary{}
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		res, err := r.runFile(ctx, file)
		if err != nil {
			return summary, err
		}
		summary.add(res)
	}
	return summary, nil
}

// runFile transforms one batch file and writes (and optionally stores) the
// result.
func (r *batchRunner) runFile(ctx context.Context, file string) (*fileResult, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	batch, err := codemeta.DecodeBatch(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	r.logger.Debug("transforming batch file",
		slog.String("file", file),
		slog.Int("roots", len(batch)))
	r.progress.OnBatchStart(filepath.Base(file), len(batch))

	out, report, err := r.driver.Run(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("transform of %s cancelled: %w", file, err)
	}

	res := &fileResult{Input: file, Report: report}

	res.Output, err = r.write(file, out)
	if err != nil {
		return nil, err
	}

	if r.writer != nil {
		res.BatchID, err = r.writer.WriteBatch(ctx, storage.BatchMeta{
			Source:   file,
			Language: string(r.extractor.Language()),
			Strategy: string(r.extractor.Strategy()),
		}, out, report)
		if err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", file, err)
		}
	}

	r.progress.OnBatchComplete(res.Output, report)
	return res, nil
}

func (r *batchRunner) write(input string, batch []*codemeta.DataStruct) (string, error) {
	var buf bytes.Buffer
	if err := codemeta.EncodeBatch(&buf, batch, r.format); err != nil {
		return "", fmt.Errorf("failed to encode %s: %w", input, err)
	}

	if r.outDir == stdoutDir {
		if _, err := r.stdout.Write(buf.Bytes()); err != nil {
			return "", fmt.Errorf("failed to write output: %w", err)
		}
		return stdoutDir, nil
	}

	output := outputPath(input, r.outDir, r.format)
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", output, err)
	}
	return output, nil
}

// outputPath names the transformed copy of input: "<name>.docmeta.<format>"
// in outDir, or next to the input when outDir is empty.
func outputPath(input, outDir string, format codemeta.Format) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+outputSuffix+"."+string(format))
}

// isOutputFile reports whether path was written by outputPath.
func isOutputFile(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), outputSuffix)
}
