// Package mcpserver exposes registered tools over the Model Context Protocol.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"searxng-tool/internal/domain"
	"searxng-tool/internal/infra/config"
)

// Server serves every tool of a ToolExecutor as an MCP tool.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds an MCP server advertising all tools currently held by tools.
func New(cfg config.MCPConfig, tools domain.ToolExecutor, logger *slog.Logger) *Server {
	s := &Server{
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
		logger: logger,
	}

	for _, t := range tools.List() {
		schema := t.Schema()
		params := schema.Parameters
		if len(params) == 0 || string(params) == "null" {
			params = json.RawMessage(`{"type": "object"}`)
		}
		s.mcp.AddTool(mcp.NewToolWithRawSchema(t.Name(), t.Description(), params), s.handler(t))
		logger.Debug("mcp tool registered", "tool", t.Name())
	}
	return s
}

// MCP returns the underlying mcp-go server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio reads JSON-RPC messages from in and writes responses to out until
// ctx is cancelled or in is closed. Cancellation is not reported as an error.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("mcp server listening on stdio")
	err := stdio.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}

func (s *Server) handler(t domain.Tool) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := req.GetArguments()
		if args == nil {
			args = map[string]any{}
		}
		params, err := json.Marshal(args)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		result, err := t.Execute(ctx, params)
		if err != nil {
			s.logger.Error("mcp tool call failed", "tool", t.Name(), "error", err)
			return nil, domain.WrapOp("mcpserver."+t.Name(), err)
		}
		if result.IsError {
			s.logger.Warn("mcp tool returned error",
				"tool", t.Name(),
				"retryable", result.IsRetryable,
			)
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}
