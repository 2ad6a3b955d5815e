package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docmeta/internal/codemeta"
	"github.com/mvp-joe/docmeta/internal/comments"
	"github.com/mvp-joe/docmeta/internal/storage"
	"github.com/mvp-joe/docmeta/internal/transform"
)

// AddTransformTool registers the docmeta_transform tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddTransformTool(s *server.MCPServer, cfg *ServerConfig) {
	tool := mcp.NewTool(
		"docmeta_transform",
		mcp.WithDescription("Replace the Content of every node in a batch of code-structure records with the documentation comments extracted from it. Returns the transformed batch, statistics and per-node diagnostics."),
		mcp.WithString("batch",
			mcp.Required(),
			mcp.Description("JSON array of structure records (NodeName, Content, Functions, InnerStructures, ...), or a single record. May be sent as JSON text or as structured JSON.")),
		mcp.WithString("language",
			mcp.Description("Source language of the Content fields (java, typescript, c, rust, php, python, ruby). Defaults to the server setting.")),
		mcp.WithString("strategy",
			mcp.Description("Extraction strategy: 'lexical' (regular expressions, never fails) or 'syntax' (tree-sitter parse). Defaults to the server setting.")),
		mcp.WithNumber("workers",
			mcp.Description("Maximum roots transformed concurrently (0-64; 0 = one per CPU, 1 = sequential)")),
		mcp.WithBoolean("store",
			mcp.Description("Store the result in the server's result store (requires storage to be enabled)")),
	)

	s.AddTool(tool, createTransformHandler(cfg))
}

// createTransformHandler creates the handler function for docmeta_transform.
func createTransformHandler(cfg *ServerConfig) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req TransformRequest
		if err := bindRequest(request, &req); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		language := req.Language
		if language == "" {
			language = cfg.Language
		}
		strategy := req.Strategy
		if strategy == "" {
			strategy = cfg.Strategy
		}
		workers := intOr(req.Workers, cfg.Workers)

		if req.Store && cfg.DB == nil {
			return mcp.NewToolResultError(errStorageDisabled.Error()), nil
		}

		extractor, err := comments.NewFromNames(language, strategy)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		batch, err := codemeta.UnmarshalBatch([]byte(req.Batch))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		out, report, err := transform.Batch(ctx, extractor, batch, transform.Options{
			Workers: workers,
			Logger:  cfg.logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("transform failed: %w", err)
		}

		encoded, err := codemeta.MarshalBatch(out)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal batch: %w", err)
		}

		response := &TransformResponse{
			Language:    string(extractor.Language()),
			Strategy:    string(extractor.Strategy()),
			Batch:       encoded,
			Stats:       report.Stats,
			Diagnostics: report.Diagnostics,
		}

		if req.Store {
			id, err := storage.NewResultWriter(cfg.DB).WriteBatch(ctx, storage.BatchMeta{
				Source:   "mcp",
				Language: response.Language,
				Strategy: response.Strategy,
			}, out, report)
			if err != nil {
				return nil, fmt.Errorf("failed to store batch: %w", err)
			}
			response.BatchID = id
		}

		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}

		// Return as text result (mcp-go convention)
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

var errStorageDisabled = errors.New("result store is not enabled on this server")

// AddLanguagesTool registers the docmeta_languages tool.
func AddLanguagesTool(s *server.MCPServer) {
	tool := mcp.NewTool(
		"docmeta_languages",
		mcp.WithDescription("List the language tags and extraction strategies accepted by docmeta_transform."),
	)

	s.AddTool(tool, handleLanguages)
}

func handleLanguages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	response := LanguagesResponse{}
	for _, lang := range comments.Languages() {
		response.Languages = append(response.Languages, string(lang))
	}
	for _, st := range comments.Strategies() {
		response.Strategies = append(response.Strategies, string(st))
	}

	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
