package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/docmeta/internal/transform"
)

// CLIProgressReporter reports transform progress with progress bars.
// Everything goes to its writer (stderr) so that stdout stays free for
// batches written with --out -.
type CLIProgressReporter struct {
	quiet     bool
	w         io.Writer
	rootBar   *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(w io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		w:         w,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.w, "Transforming %s batch files\n", formatNumber(files))
}

func (c *CLIProgressReporter) OnBatchStart(file string, roots int) {
	if c.quiet || roots == 0 {
		return
	}

	c.rootBar = progressbar.NewOptions(roots,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription(file),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("roots/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

// OnRootDone may be called from several driver workers at once.
func (c *CLIProgressReporter) OnRootDone(int) {
	if c.quiet {
		return
	}
	if c.rootBar != nil {
		c.rootBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnBatchComplete(output string, report *transform.Report) {
	if c.quiet {
		return
	}
	if c.rootBar != nil {
		c.rootBar.Finish()
		c.rootBar = nil
	}

	fmt.Fprintf(c.w, "  %s: %s nodes, %s replaced, %s retained",
		output,
		formatNumber(report.Stats.Nodes),
		formatNumber(report.Stats.Replaced),
		formatNumber(report.Stats.Retained))
	if n := len(report.Diagnostics); n > 0 {
		fmt.Fprintf(c.w, ", %s diagnostics", formatNumber(n))
	}
	fmt.Fprintln(c.w)
}

func (c *CLIProgressReporter) OnComplete(summary *runSummary) {
	if c.quiet {
		return
	}

	fmt.Fprintln(c.w)
	fmt.Fprintf(c.w, "✓ Transform complete: %s files, %s roots in %.1fs\n",
		formatNumber(summary.Files),
		formatNumber(summary.Stats.Roots),
		time.Since(c.startTime).Seconds())
	fmt.Fprintf(c.w, "  Replaced:    %s\n", formatNumber(summary.Stats.Replaced))
	fmt.Fprintf(c.w, "  Retained:    %s\n", formatNumber(summary.Stats.Retained))
	fmt.Fprintf(c.w, "  Diagnostics: %s\n", formatNumber(summary.Diagnostics))
}

// formatNumber formats a number with thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return formatNumber(n/1000) + fmt.Sprintf(",%03d", n%1000)
}
