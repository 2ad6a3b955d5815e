package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is the version written to store_metadata by CreateSchema.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes of the result store.
// Uses a transaction for atomicity - all schema creation succeeds or fails together.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"batches", createBatchesTable},
		{"node_docs", createNodeDocsTable},
		{"diagnostics", createDiagnosticsTable},
		{"store_metadata", createStoreMetadataTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		"INSERT INTO store_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)",
		SchemaVersion, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// GetSchemaVersion retrieves the schema version from store_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createBatchesTable = `
CREATE TABLE batches (
    batch_id TEXT PRIMARY KEY,                   -- UUID
    source TEXT NOT NULL DEFAULT '',             -- input file path, or '' for in-memory batches
    language TEXT NOT NULL,
    strategy TEXT NOT NULL,
    root_count INTEGER NOT NULL,
    node_count INTEGER NOT NULL,
    replaced_count INTEGER NOT NULL,
    retained_count INTEGER NOT NULL,
    diagnostic_count INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    created_at TEXT NOT NULL                     -- ISO 8601
)
`

const createNodeDocsTable = `
CREATE TABLE node_docs (
    batch_id TEXT NOT NULL,
    seq INTEGER NOT NULL,                        -- pre-order position within the batch
    path TEXT NOT NULL,                          -- e.g. batch[0].Functions[1]
    kind TEXT NOT NULL,                          -- struct | function
    node_name TEXT NOT NULL,
    content TEXT,                                -- NULL when the node had no content
    PRIMARY KEY (batch_id, seq),
    FOREIGN KEY (batch_id) REFERENCES batches(batch_id) ON DELETE CASCADE
)
`

const createDiagnosticsTable = `
CREATE TABLE diagnostics (
    batch_id TEXT NOT NULL,
    seq INTEGER NOT NULL,
    kind TEXT NOT NULL,
    path TEXT NOT NULL,
    message TEXT NOT NULL,
    PRIMARY KEY (batch_id, seq),
    FOREIGN KEY (batch_id) REFERENCES batches(batch_id) ON DELETE CASCADE
)
`

const createStoreMetadataTable = `
CREATE TABLE store_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_batches_created_at ON batches(created_at)",
		"CREATE INDEX idx_batches_source ON batches(source)",
		"CREATE INDEX idx_node_docs_path ON node_docs(path)",
		"CREATE INDEX idx_node_docs_node_name ON node_docs(node_name)",
		"CREATE INDEX idx_diagnostics_kind ON diagnostics(kind)",
	}
}
