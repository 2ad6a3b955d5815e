package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/transform"
)

// ResultWriter stores transformed batches in SQLite.
type ResultWriter struct {
	db *sql.DB
}

// BatchMeta describes where a batch came from and how it was transformed.
type BatchMeta struct {
	Source   string
	Language string
	Strategy string
}

// NewResultWriter creates a ResultWriter instance.
// DB must have schema already created via CreateSchema().
func NewResultWriter(db *sql.DB) *ResultWriter {
	return &ResultWriter{db: db}
}

// WriteBatch stores one transformed batch with its node texts and
// diagnostics and returns the new batch ID. All rows are written in one
// transaction.
func (w *ResultWriter) WriteBatch(ctx context.Context, meta BatchMeta, batch []*codemeta.DataStruct, report *transform.Report) (string, error) {
	if report == nil {
		report = &transform.Report{}
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	batchID := uuid.New().String()

	_, err = sq.Insert("batches").
		Columns(
			"batch_id", "source", "language", "strategy",
			"root_count", "node_count", "replaced_count", "retained_count",
			"diagnostic_count", "duration_ms", "created_at",
		).
		Values(
			batchID,
			meta.Source,
			meta.Language,
			meta.Strategy,
			len(batch),
			codemeta.CountNodes(batch),
			report.Stats.Replaced,
			report.Stats.Retained,
			len(report.Diagnostics),
			report.Duration.Milliseconds(),
			time.Now().UTC().Format(timestampLayout),
		).
		RunWith(tx).
		ExecContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to insert batch: %w", err)
	}

	var refs []codemeta.NodeRef
	codemeta.Walk(batch, func(ref codemeta.NodeRef) bool {
		refs = append(refs, ref)
		return true
	})

	for seq, ref := range refs {
		_, err := sq.Insert("node_docs").
			Columns("batch_id", "seq", "path", "kind", "node_name", "content").
			Values(batchID, seq, ref.Path, string(ref.Kind), ref.Name, nullableText(ref.Content)).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to insert node %s: %w", ref.Path, err)
		}
	}

	for i, d := range report.Diagnostics {
		_, err := sq.Insert("diagnostics").
			Columns("batch_id", "seq", "kind", "path", "message").
			Values(batchID, i, string(d.Kind), d.Path, d.Message).
			RunWith(tx).
			ExecContext(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to insert diagnostic %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	return batchID, nil
}

// DeleteBatch removes a batch and, by cascade, its nodes and diagnostics.
func (w *ResultWriter) DeleteBatch(ctx context.Context, batchID string) error {
	_, err := sq.Delete("batches").
		Where(sq.Eq{"batch_id": batchID}).
		RunWith(w.db).
		ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete batch %s: %w", batchID, err)
	}
	return nil
}

func nullableText(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
