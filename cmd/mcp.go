/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/josephgoksu/tasklane/internal/logger"
	"github.com/josephgoksu/tasklane/internal/task"
	"github.com/josephgoksu/tasklane/store"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server so AI assistants can manage tasks.

The server runs over stdin/stdout and provides tools to list, create, update,
complete and delete tasks, merge batches of task specs, search live and archived
tasks, assess complexity and check dependencies. The unified "task" tool drives
the next/start/complete/check work loop.

Logs go to stderr. The server runs until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, s, err := openRepository()
	if err != nil {
		return fmt.Errorf("failed to initialize task store: %w", err)
	}
	defer func() { _ = s.Close() }()

	server := newMCPServer(repo, newSearcher(repo, s))

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go watchDataFile(watchCtx, s)

	slog.Info("mcp server starting", "data", s.FilePath(), "version", version)
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// newMCPServer builds a server with every tool and resource registered.
func newMCPServer(repo *task.Repository, searcher *task.Searcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tasklane",
		Version: version,
	}, &mcp.ServerOptions{})

	registerMCPTools(server, repo, searcher)
	registerMCPResources(server, repo)
	return server
}

// watchDataFile logs edits to the data file made by other processes.
func watchDataFile(ctx context.Context, s *store.FileTaskStore) {
	err := s.Watch(ctx, func(path string) {
		logInfo("task file changed outside this server", "path", path)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("not watching task file", "path", s.FilePath(), "error", err)
	}
}

func logError(err error) {
	slog.Error("mcp error", "error", err)
}

func logInfo(msg string, args ...any) {
	slog.Info(msg, args...)
}

func logToolCall(toolName string, params any) {
	logger.SetLastToolCall(toolName, params)
	slog.Debug("mcp tool called", "tool", toolName, "params", fmt.Sprintf("%+v", params))
}
