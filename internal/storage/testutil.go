package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// NewTestDB creates a fully configured in-memory SQLite database for testing.
//
// The database includes:
//   - Foreign key constraints enabled (cascade deletes rely on it)
//   - Full schema created
//   - Automatic cleanup registered with t.Cleanup()
func NewTestDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

// NewTestDBFile creates a file-based SQLite database in t.TempDir().
// Use this when a test needs the store to survive a reopen.
func NewTestDBFile(t testing.TB) (*sql.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "results.db")
	db, err := Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, dbPath
}

// NewTestDBMinimal creates an in-memory SQLite database without schema.
func NewTestDBMinimal(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	return db
}
