package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docmeta/internal/codemeta"
)

// copyFixture copies a batch from testdata/batches into dir.
func copyFixture(t *testing.T, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("..", "..", "testdata", "batches", name))
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// readBatch decodes a JSON batch file.
func readBatch(t *testing.T, path string) []*codemeta.DataStruct {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	batch, err := codemeta.DecodeBatch(f)
	require.NoError(t, err)
	return batch
}
