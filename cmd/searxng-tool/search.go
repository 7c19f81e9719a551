package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"searxng-tool/internal/adapter/tool"
	"searxng-tool/internal/infra/config"
	"searxng-tool/internal/infra/logger"
	"searxng-tool/internal/infra/tracer"
)

// runSearch performs a single search and prints the response.
// A response carrying an error is still printed before the error is returned.
func runSearch(ctx context.Context, args []string, stdout io.Writer) error {
	flags, err := parseFlags(args, "config", "topic", "limit", "categories", "time-range", "format")
	if err != nil {
		return err
	}
	query := strings.Join(flags.Args, " ")
	if strings.TrimSpace(query) == "" {
		return errors.New("a query is required, see 'searxng-tool --help'")
	}
	if err := validateFormat(flags.Format); err != nil {
		return err
	}

	cfg, err := config.Load(configPath(flags))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	search := tool.NewSearXNGSearchTool(cfg.Search.AsToolConfig(), log)
	resp := search.Run(ctx, flags.Topic, tool.SearchParams{
		Query:      query,
		Limit:      flags.Limit,
		Categories: flags.Categories,
		TimeRange:  flags.TimeRange,
	}, nil, nil)

	if err := writeResponse(stdout, flags.Format, query, resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return errors.New(resp.Error)
	}
	return nil
}
