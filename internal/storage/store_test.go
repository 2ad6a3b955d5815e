package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/transform"
)

// Test Plan for the result store:
// - Open creates the schema once and reports its version
// - WriteBatch stores the batch row, every node in walk order and every diagnostic
// - Absent content is stored as NULL and read back as nil; "" stays ""
// - GetBatch returns (nil, nil) for unknown IDs
// - ListBatches returns newest first and honors the limit
// - DeleteBatch cascades to nodes and diagnostics
// - A failed node insert aborts the whole batch, even when later inserts succeed
// - File-backed stores survive a reopen

func sampleResult() ([]*codemeta.DataStruct, *transform.Report) {
	batch := []*codemeta.DataStruct{
		{
			NodeName: "Foo",
			Content:  codemeta.Text("A"),
			Functions: []*codemeta.Function{
				{Name: "bar", Content: codemeta.Text("B")},
				nil,
			},
			InnerStructures: []*codemeta.DataStruct{{NodeName: "Inner", Content: codemeta.Text("")}},
		},
		{NodeName: "NoDoc"},
	}
	report := &transform.Report{
		Stats: transform.Stats{Roots: 2, Nodes: 4, Replaced: 3, Absent: 1},
		Diagnostics: []transform.Diagnostic{
			{Kind: transform.MalformedNode, Path: "batch[0].Functions[1]", Message: "nil function entry"},
		},
		Duration: 1500 * time.Millisecond,
	}
	return batch, report
}

func TestOpen_CreatesSchemaOnce(t *testing.T) {
	t.Parallel()

	db, path := NewTestDBFile(t)
	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
	require.NoError(t, db.Close())

	// Reopen: schema already exists and must not be recreated
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	version, err = GetSchemaVersion(db2)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestGetSchemaVersion_NewDatabase(t *testing.T) {
	t.Parallel()

	db := NewTestDBMinimal(t)
	version, err := GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, "0", version)

	require.NoError(t, CreateSchema(db))
	version, err = GetSchemaVersion(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestWriteBatch_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := NewTestDB(t)
	writer := NewResultWriter(db)
	reader := NewResultReader(db)

	batch, report := sampleResult()
	id, err := writer.WriteBatch(ctx, BatchMeta{Source: "in.json", Language: "java", Strategy: "syntax"}, batch, report)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := reader.GetBatch(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "in.json", rec.Source)
	assert.Equal(t, "java", rec.Language)
	assert.Equal(t, "syntax", rec.Strategy)
	assert.Equal(t, 2, rec.RootCount)
	assert.Equal(t, 4, rec.NodeCount)
	assert.Equal(t, 3, rec.ReplacedCount)
	assert.Equal(t, 1, rec.DiagnosticCount)
	assert.Equal(t, 1500*time.Millisecond, rec.Duration)
	assert.False(t, rec.CreatedAt.IsZero())

	docs, err := reader.ReadNodeDocs(ctx, id)
	require.NoError(t, err)
	require.Len(t, docs, 4)

	paths := []string{docs[0].Path, docs[1].Path, docs[2].Path, docs[3].Path}
	assert.Equal(t, []string{"batch[0]", "batch[0].Functions[0]", "batch[0].InnerStructures[0]", "batch[1]"}, paths)

	assert.Equal(t, "struct", docs[0].Kind)
	assert.Equal(t, "A", *docs[0].Content)
	assert.Equal(t, "function", docs[1].Kind)
	assert.Equal(t, "bar", docs[1].NodeName)
	assert.Equal(t, "B", *docs[1].Content)
	require.NotNil(t, docs[2].Content, "empty text is not absent")
	assert.Equal(t, "", *docs[2].Content)
	assert.Nil(t, docs[3].Content)

	diags, err := reader.ReadDiagnostics(ctx, id)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "malformed_node", diags[0].Kind)
	assert.Equal(t, "batch[0].Functions[1]", diags[0].Path)
}

func TestGetBatch_NotFound(t *testing.T) {
	t.Parallel()

	rec, err := NewResultReader(NewTestDB(t)).GetBatch(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestListBatches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := NewTestDB(t)
	writer := NewResultWriter(db)

	batch, report := sampleResult()
	var ids []string
	for range 3 {
		id, err := writer.WriteBatch(ctx, BatchMeta{Language: "java", Strategy: "lexical"}, batch, report)
		require.NoError(t, err)
		ids = append(ids, id)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := NewResultReader(db).ListBatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID, "newest first")

	limited, err := NewResultReader(db).ListBatches(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestDeleteBatch_Cascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := NewTestDB(t)
	writer := NewResultWriter(db)
	reader := NewResultReader(db)

	batch, report := sampleResult()
	id, err := writer.WriteBatch(ctx, BatchMeta{Language: "java", Strategy: "syntax"}, batch, report)
	require.NoError(t, err)

	require.NoError(t, writer.DeleteBatch(ctx, id))

	docs, err := reader.ReadNodeDocs(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, docs)

	diags, err := reader.ReadDiagnostics(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestWriteBatch_NilReport(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := NewTestDB(t)

	id, err := NewResultWriter(db).WriteBatch(ctx, BatchMeta{Language: "c", Strategy: "lexical"}, []*codemeta.DataStruct{}, nil)
	require.NoError(t, err)

	rec, err := NewResultReader(db).GetBatch(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.RootCount)
	assert.Equal(t, 0, rec.DiagnosticCount)
}

func TestWriteBatch_NodeInsertFailureRollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	db := NewTestDB(t)

	_, err := db.Exec(`
		CREATE TRIGGER reject_node BEFORE INSERT ON node_docs
		WHEN NEW.path = 'batch[0].Functions[0]'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`)
	require.NoError(t, err)

	batch, report := sampleResult()
	id, err := NewResultWriter(db).WriteBatch(ctx, BatchMeta{Language: "java", Strategy: "lexical"}, batch, report)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch[0].Functions[0]")
	assert.Empty(t, id)

	batches, err := NewResultReader(db).ListBatches(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, batches)

	var nodes int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM node_docs").Scan(&nodes))
	assert.Zero(t, nodes)
}
