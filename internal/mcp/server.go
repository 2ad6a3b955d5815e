package mcp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/docmeta/internal/logging"
)

// ServerConfig holds the defaults the tools fall back to when a call
// leaves an argument out.
type ServerConfig struct {
	Name     string
	Version  string
	Language string
	Strategy string
	Workers  int
	Logger   *slog.Logger

	// DB is the result store. Nil disables storing and the store tools
	// report an error.
	DB *sql.DB
}

func (c *ServerConfig) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.Discard()
	}
	return c.Logger
}

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	config *ServerConfig
	mcp    *server.MCPServer
}

// NewMCPServer creates a server with every docmeta tool registered.
func NewMCPServer(config *ServerConfig) (*MCPServer, error) {
	if config == nil {
		return nil, fmt.Errorf("server config is required")
	}
	if config.Name == "" {
		config.Name = "docmeta-mcp"
	}
	if config.Version == "" {
		config.Version = "dev"
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	AddTransformTool(mcpServer, config)
	AddLanguagesTool(mcpServer)
	AddStoreTools(mcpServer, config.DB)

	return &MCPServer{config: config, mcp: mcpServer}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	logger := s.config.logger()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting MCP server on stdio",
			slog.String("language", s.config.Language),
			slog.String("strategy", s.config.Strategy),
			slog.Bool("storage", s.config.DB != nil),
		)
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
