package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/docmeta/internal/config"
	"github.com/mvp-joe/docmeta/internal/mcp"
	"github.com/mvp-joe/docmeta/internal/storage"
)

var serveStoreFlag bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server exposing docmeta tools",
	Long: `Start the Model Context Protocol (MCP) server so that LLM-powered tools can
transform batches without going through files.

The MCP server:
- Provides docmeta_transform and docmeta_languages
- Provides docmeta_batches and docmeta_batch_docs when the result store is enabled
- Communicates via stdio (standard MCP transport)

Logs go to stderr; stdout carries the protocol.

Example:
  docmeta serve --store`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&serveStoreFlag, "store", false, "enable the result store")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	env, err := loadEnvironment(os.Stderr, func(cfg *config.Config) {
		if serveStoreFlag {
			cfg.Storage.Enabled = true
		}
	})
	if err != nil {
		return err
	}

	var db *sql.DB
	if env.cfg.Storage.Enabled {
		db, err = storage.Open(env.resolve(env.cfg.Storage.Path))
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer db.Close()
	}

	server, err := mcp.NewMCPServer(&mcp.ServerConfig{
		Name:     "docmeta-mcp",
		Version:  Version,
		Language: env.cfg.Extraction.Language,
		Strategy: env.cfg.Extraction.Strategy,
		Workers:  env.cfg.Concurrency.Workers,
		Logger:   env.logger,
		DB:       db,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
