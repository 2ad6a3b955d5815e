package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DiagnosticKind classifies a non-fatal problem found while transforming.
type DiagnosticKind string

const (
	// ExtractionFailure: the extractor returned a structured Failure. The
	// original content was kept.
	ExtractionFailure DiagnosticKind = "extraction_failure"

	// MalformedNode: a children list held a nil entry. The entry was skipped.
	MalformedNode DiagnosticKind = "malformed_node"

	// ExtractorFault: the extractor panicked. Handled like ExtractionFailure
	// but logged at error level.
	ExtractorFault DiagnosticKind = "extractor_fault"
)

// ErrExtractorPanic wraps the value recovered from a panicking extractor.
var ErrExtractorPanic = errors.New("extractor panicked")

// Diagnostic records one non-fatal problem at a node path such as
// "batch[2].InnerStructures[0].Functions[1]". Err is the extractor's error
// for ExtractionFailure and ExtractorFault, nil for MalformedNode. Only
// Message is serialized.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Path    string         `json:"path"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Kind, d.Path, d.Message)
}

// level is the log level a diagnostic is reported at.
func (d Diagnostic) level() slog.Level {
	if d.Kind == ExtractorFault {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// Stats counts what happened to the content fields of a batch.
type Stats struct {
	Roots    int `json:"roots"`
	Nodes    int `json:"nodes"`
	Replaced int `json:"replaced"`
	Retained int `json:"retained"`
	Absent   int `json:"absent"`
}

func (s *Stats) add(o Stats) {
	s.Roots += o.Roots
	s.Nodes += o.Nodes
	s.Replaced += o.Replaced
	s.Retained += o.Retained
	s.Absent += o.Absent
}

// Report summarizes one batch run. Diagnostics are ordered by root index and,
// within a root, by the order the walk found them.
type Report struct {
	Stats       Stats         `json:"stats"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
	Duration    time.Duration `json:"duration"`
}

// Count returns the number of diagnostics of the given kind.
func (r *Report) Count(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// log writes every diagnostic to logger. It runs after the join, never
// inside an extraction call.
func (r *Report) log(ctx context.Context, logger *slog.Logger) {
	for _, d := range r.Diagnostics {
		attrs := []any{
			slog.String("kind", string(d.Kind)),
			slog.String("path", d.Path),
			slog.String("message", d.Message),
		}
		if d.Err != nil {
			attrs = append(attrs, slog.Any("error", d.Err))
		}
		logger.Log(ctx, d.level(), "content transform diagnostic", attrs...)
	}
}
