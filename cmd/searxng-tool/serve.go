package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"searxng-tool/internal/adapter/mcpserver"
	"searxng-tool/internal/adapter/tool"
	"searxng-tool/internal/infra/config"
	"searxng-tool/internal/infra/logger"
	"searxng-tool/internal/infra/tracer"
)

// runServe serves the search tool over MCP on stdin/stdout until SIGINT/SIGTERM
// or until the client closes stdin.
func runServe(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	flags, err := parseFlags(args, "config")
	if err != nil {
		return err
	}
	if len(flags.Args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", flags.Args)
	}

	cfg, err := config.Load(configPath(flags))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// stdout carries the protocol stream.
	log, logCloser, err := logger.NewForStdio(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(context.Background())

	registry := tool.NewRegistry(log)
	if err := registry.Register(tool.NewSearXNGSearchTool(cfg.Search.AsToolConfig(), log)); err != nil {
		return fmt.Errorf("register tool: %w", err)
	}

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting mcp server", "name", cfg.MCP.Name, "version", cfg.MCP.Version)
	return mcpserver.New(cfg.MCP, registry, log).ServeStdio(ctx, stdin, stdout)
}
