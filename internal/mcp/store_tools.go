package mcp

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docmeta/internal/storage"
)

// AddStoreTools registers the read-only tools over the result store:
// docmeta_batches and docmeta_batch_docs.
func AddStoreTools(s *server.MCPServer, db *sql.DB) {
	listTool := mcp.NewTool(
		"docmeta_batches",
		mcp.WithDescription("List stored transform results, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of batches to return (1-100, default: 20)")),
	)
	s.AddTool(listTool, createBatchesHandler(db))

	docsTool := mcp.NewTool(
		"docmeta_batch_docs",
		mcp.WithDescription("Return the extracted documentation text of every node of a stored batch."),
		mcp.WithString("batch_id",
			mcp.Required(),
			mcp.Description("ID returned by docmeta_transform or docmeta_batches")),
		mcp.WithArray("kinds",
			mcp.Description("Only return nodes of these kinds: 'struct', 'function'. Leave empty for all.")),
	)
	s.AddTool(docsTool, createBatchDocsHandler(db))
}

func createBatchesHandler(db *sql.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if db == nil {
			return mcp.NewToolResultError(errStorageDisabled.Error()), nil
		}

		var req BatchesRequest
		if err := bindRequest(request, &req); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		limit := intOr(req.Limit, 20)

		records, err := storage.NewResultReader(db).ListBatches(ctx, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to list batches: %w", err)
		}

		response := BatchesResponse{Batches: make([]StoredBatch, 0, len(records))}
		for _, rec := range records {
			response.Batches = append(response.Batches, toStoredBatch(rec))
		}
		response.Total = len(response.Batches)

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func createBatchDocsHandler(db *sql.DB) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if db == nil {
			return mcp.NewToolResultError(errStorageDisabled.Error()), nil
		}

		var req BatchDocsRequest
		if err := bindRequest(request, &req); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		batchID, kinds := req.BatchID, req.Kinds

		reader := storage.NewResultReader(db)
		rec, err := reader.GetBatch(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("failed to get batch: %w", err)
		}
		if rec == nil {
			return mcp.NewToolResultError(fmt.Sprintf("batch %s not found", batchID)), nil
		}

		docs, err := reader.ReadNodeDocs(ctx, batchID)
		if err != nil {
			return nil, fmt.Errorf("failed to read node docs: %w", err)
		}

		response := BatchDocsResponse{Batch: toStoredBatch(rec), Nodes: []StoredNode{}}
		for _, doc := range docs {
			if len(kinds) > 0 && !slices.Contains(kinds, doc.Kind) {
				continue
			}
			response.Nodes = append(response.Nodes, StoredNode{
				Path:     doc.Path,
				Kind:     doc.Kind,
				NodeName: doc.NodeName,
				Content:  doc.Content,
			})
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

func toStoredBatch(rec *storage.BatchRecord) StoredBatch {
	return StoredBatch{
		BatchID:         rec.ID,
		Source:          rec.Source,
		Language:        rec.Language,
		Strategy:        rec.Strategy,
		RootCount:       rec.RootCount,
		NodeCount:       rec.NodeCount,
		DiagnosticCount: rec.DiagnosticCount,
		CreatedAt:       rec.CreatedAt.Format(time.RFC3339),
	}
}
