package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// ResultReader reads stored batches back.
type ResultReader struct {
	db *sql.DB
}

// NewResultReader creates a ResultReader over an existing connection.
// The caller manages the connection lifecycle.
func NewResultReader(db *sql.DB) *ResultReader {
	return &ResultReader{db: db}
}

var batchColumns = []string{
	"batch_id", "source", "language", "strategy",
	"root_count", "node_count", "replaced_count", "retained_count",
	"diagnostic_count", "duration_ms", "created_at",
}

// GetBatch retrieves one batch record.
// Returns (nil, nil) if the batch is not found.
func (r *ResultReader) GetBatch(ctx context.Context, batchID string) (*BatchRecord, error) {
	row := sq.Select(batchColumns...).
		From("batches").
		Where(sq.Eq{"batch_id": batchID}).
		RunWith(r.db).
		QueryRowContext(ctx)

	rec, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get batch %s: %w", batchID, err)
	}
	return rec, nil
}

// ListBatches returns the most recent batches first. A limit of zero or
// less returns all of them.
func (r *ResultReader) ListBatches(ctx context.Context, limit int) ([]*BatchRecord, error) {
	query := sq.Select(batchColumns...).
		From("batches").
		OrderBy("created_at DESC", "batch_id")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	rows, err := query.RunWith(r.db).QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}
	defer rows.Close()

	var records []*BatchRecord
	for rows.Next() {
		rec, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating batches: %w", err)
	}

	return records, nil
}

// ReadNodeDocs returns the node texts of a batch in walk order.
func (r *ResultReader) ReadNodeDocs(ctx context.Context, batchID string) ([]*NodeDoc, error) {
	rows, err := sq.Select("batch_id", "seq", "path", "kind", "node_name", "content").
		From("node_docs").
		Where(sq.Eq{"batch_id": batchID}).
		OrderBy("seq").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query node docs: %w", err)
	}
	defer rows.Close()

	var docs []*NodeDoc
	for rows.Next() {
		doc := &NodeDoc{}
		var content sql.NullString
		if err := rows.Scan(&doc.BatchID, &doc.Seq, &doc.Path, &doc.Kind, &doc.NodeName, &content); err != nil {
			return nil, fmt.Errorf("failed to scan node doc: %w", err)
		}
		if content.Valid {
			doc.Content = &content.String
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating node docs: %w", err)
	}

	return docs, nil
}

// ReadDiagnostics returns the diagnostics of a batch in report order.
func (r *ResultReader) ReadDiagnostics(ctx context.Context, batchID string) ([]*DiagnosticRecord, error) {
	rows, err := sq.Select("batch_id", "seq", "kind", "path", "message").
		From("diagnostics").
		Where(sq.Eq{"batch_id": batchID}).
		OrderBy("seq").
		RunWith(r.db).
		QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var records []*DiagnosticRecord
	for rows.Next() {
		d := &DiagnosticRecord{}
		if err := rows.Scan(&d.BatchID, &d.Seq, &d.Kind, &d.Path, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		records = append(records, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating diagnostics: %w", err)
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBatch(s scanner) (*BatchRecord, error) {
	rec := &BatchRecord{}
	var durationMS int64
	var createdAt string

	err := s.Scan(
		&rec.ID,
		&rec.Source,
		&rec.Language,
		&rec.Strategy,
		&rec.RootCount,
		&rec.NodeCount,
		&rec.ReplacedCount,
		&rec.RetainedCount,
		&rec.DiagnosticCount,
		&durationMS,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Duration = time.Duration(durationMS) * time.Millisecond
	rec.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	return rec, nil
}
