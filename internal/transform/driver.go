package transform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/comments"
	"github.com/mvp-joe/docmeta/internal/logging"
)

// Options configures a Driver.
type Options struct {
	// Workers bounds how many roots are transformed at once. Zero or less
	// means runtime.NumCPU(); one runs every root on the calling goroutine.
	Workers int

	// Logger receives diagnostics and the batch summary. Nil discards them.
	Logger *slog.Logger

	// OnRootDone, if set, is called once per finished root. It may be called
	// from several goroutines at once and in any order.
	OnRootDone func(index int)
}

// Driver transforms whole batches, fanning roots out over a bounded set of
// workers and assembling the results back in input order.
type Driver struct {
	transformer *Transformer
	workers     int
	logger      *slog.Logger
	onRootDone  func(int)
}

// NewDriver creates a driver that transforms with the given extractor.
func NewDriver(extractor comments.Extractor, opts Options) *Driver {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Driver{
		transformer: NewTransformer(extractor),
		workers:     workers,
		logger:      logger,
		onRootDone:  opts.OnRootDone,
	}
}

// Workers returns the configured concurrency bound.
func (d *Driver) Workers() int {
	return d.workers
}

// Run transforms every root of batch. The output has the same length and
// order as the input, whatever the worker count. Per-node problems are
// reported in the Report and never abort the batch. If ctx is cancelled
// before every root is done, Run returns ctx.Err() and no output.
func (d *Driver) Run(ctx context.Context, batch []*codemeta.DataStruct) ([]*codemeta.DataStruct, *Report, error) {
	start := time.Now()
	results := make([]unitResult, len(batch))

	workers := min(d.workers, len(batch))
	if workers <= 1 {
		for i, root := range batch {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
			results[i] = d.unit(i, root)
			d.done(i)
		}
	} else {
		g := new(errgroup.Group)
		g.SetLimit(workers)

		for i, root := range batch {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				results[i] = d.unit(i, root)
				d.done(i)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, nil, err
		}
	}

	out := make([]*codemeta.DataStruct, len(batch))
	report := &Report{Diagnostics: []Diagnostic{}}
	for i, res := range results {
		out[i] = res.node
		report.Stats.add(res.stats)
		report.Diagnostics = append(report.Diagnostics, res.diagnostics...)
	}
	report.Duration = time.Since(start)

	report.log(ctx, d.logger)
	d.logger.Info("transformed batch",
		slog.Int("roots", report.Stats.Roots),
		slog.Int("nodes", report.Stats.Nodes),
		slog.Int("replaced", report.Stats.Replaced),
		slog.Int("retained", report.Stats.Retained),
		slog.Int("diagnostics", len(report.Diagnostics)),
		slog.Int("workers", max(workers, 1)),
		slog.Duration("duration", report.Duration),
	)

	return out, report, nil
}

// unit transforms one root. A panic outside extraction keeps the root
// unchanged and is reported rather than crashing the batch.
func (d *Driver) unit(i int, root *codemeta.DataStruct) (res unitResult) {
	path := codemeta.RootPath(i)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("transform panicked: %v", r)
			res = unitResult{
				node:  root.Clone(),
				stats: Stats{Roots: 1},
				diagnostics: []Diagnostic{{
					Kind:    ExtractorFault,
					Path:    path,
					Message: err.Error(),
					Err:     err,
				}},
			}
		}
	}()

	return d.transformer.transformAt(root, path)
}

func (d *Driver) done(i int) {
	if d.onRootDone != nil {
		d.onRootDone(i)
	}
}

// Batch is a convenience wrapper: build a driver for extractor and run it
// once over batch.
func Batch(ctx context.Context, extractor comments.Extractor, batch []*codemeta.DataStruct, opts Options) ([]*codemeta.DataStruct, *Report, error) {
	return NewDriver(extractor, opts).Run(ctx, batch)
}
