package tool

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/trace"

	"searxng-tool/internal/domain"
	"searxng-tool/internal/infra/config"
	"searxng-tool/internal/infra/tracer"
)

const (
	defaultSearchLimit = 5
	maxSearchLimit     = 20
	maxSnippetRunes    = 200
	maxErrorRunes      = 200
)

// SearchParams are the caller-supplied search parameters.
// A nil Limit means "use the default".
type SearchParams struct {
	Query      string `json:"query"`
	Limit      *int   `json:"limit,omitempty"`
	Categories string `json:"categories,omitempty"`
	TimeRange  string `json:"time_range,omitempty"`
}

type searxngSearchParams struct {
	Topic string `json:"topic,omitempty"`
	SearchParams
}

// BackendFactory builds the backend used for one invocation.
type BackendFactory func(instanceURL string, logger *slog.Logger) SearchBackend

// SearXNGSearchTool forwards queries to a SearXNG instance and normalizes the results.
// Each invocation resolves its own configuration and builds its own backend, so the
// tool holds no per-search state.
type SearXNGSearchTool struct {
	config     map[string]string
	getenv     func(string) string
	newBackend BackendFactory
	logger     *slog.Logger
}

// NewSearXNGSearchTool creates the search tool. cfg is the explicit configuration
// mapping (see config.SearchConfig.AsToolConfig); it may be nil.
func NewSearXNGSearchTool(cfg map[string]string, logger *slog.Logger) *SearXNGSearchTool {
	return &SearXNGSearchTool{
		config: cfg,
		getenv: os.Getenv,
		newBackend: func(instanceURL string, logger *slog.Logger) SearchBackend {
			return NewSearXNGBackend(instanceURL, logger)
		},
		logger: logger,
	}
}

// WithBackendFactory replaces the backend constructor. Used by tests and the doctor command.
func (t *SearXNGSearchTool) WithBackendFactory(f BackendFactory) *SearXNGSearchTool {
	t.newBackend = f
	return t
}

func (t *SearXNGSearchTool) Name() string { return "searxng_search" }
func (t *SearXNGSearchTool) Description() string {
	return "Search the web through a self-hosted SearXNG instance and return deduplicated results"
}

func (t *SearXNGSearchTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"topic": {"type": "string", "description": "Caller topic, recorded for tracing only"},
				"query": {"type": "string", "description": "The search query"},
				"limit": {"type": "integer", "description": "Maximum number of results, clamped to 1-20 (default: 5)"},
				"categories": {"type": "string", "description": "Comma-separated SearXNG categories (optional)"},
				"time_range": {"type": "string", "description": "SearXNG time range such as day, month or year (optional)"}
			},
			"required": ["query"]
		}`),
	}
}

// Execute decodes the tool params and returns the JSON-encoded SearchResponse.
// A failed search yields an error result whose content is still a SearchResponse.
func (t *SearXNGSearchTool) Execute(ctx context.Context, params json.RawMessage) (*domain.ToolResult, error) {
	return Execute(ctx, "tool.searxng_search", t.logger, params,
		func(ctx context.Context, span trace.Span, p searxngSearchParams) (any, error) {
			resp, err := t.run(ctx, span, p.Topic, p.SearchParams, nil, nil)
			if err != nil {
				data, _ := json.Marshal(errorResponse(err))
				return &domain.ToolResult{
					IsError:     true,
					IsRetryable: classifyToolError(err),
					Content:     string(data),
				}, nil
			}
			return resp, nil
		},
	)
}

// Run performs one logical search. It never fails: backend and configuration
// errors are reported through SearchResponse.Error. cfg entries override the
// tool's own configuration; telemetry entries are attached to logs and the span.
func (t *SearXNGSearchTool) Run(ctx context.Context, topic string, params SearchParams, cfg, telemetry map[string]string) SearchResponse {
	ctx, span := tracer.StartSpan(ctx, "tool.searxng_search",
		trace.WithAttributes(tracer.StringAttr("tool.name", t.Name())),
	)
	defer span.End()

	resp, err := t.run(ctx, span, topic, params, cfg, telemetry)
	if err != nil {
		tracer.RecordError(span, err)
		return errorResponse(err)
	}
	tracer.SetOK(span)
	return resp
}

func (t *SearXNGSearchTool) run(ctx context.Context, span trace.Span, topic string, params SearchParams, cfg, telemetry map[string]string) (SearchResponse, error) {
	searchID := newSearchID()
	ctx = domain.ContextWithSearchID(ctx, searchID)
	logger := t.logger.With(invocationAttrs(searchID, topic, telemetry)...)

	span.SetAttributes(
		tracer.StringAttr("search.id", searchID),
		tracer.StringAttr("search.topic", topic),
	)
	for _, k := range sortedKeys(telemetry) {
		span.SetAttributes(tracer.StringAttr("telemetry."+k, telemetry[k]))
	}

	query := strings.TrimSpace(params.Query)
	if query == "" {
		logger.Debug("empty query, search skipped")
		return SearchResponse{Results: []SearchResult{}}, nil
	}

	settings, err := config.ResolveSearXNG(mergeConfig(t.config, cfg), t.getenv)
	if err != nil {
		logger.Error("searxng configuration invalid", "error", err)
		return SearchResponse{}, err
	}
	if err := ValidateURL(config.KeySearXNGURL, settings.URL); err != nil {
		logger.Error("searxng configuration invalid", "error", err)
		return SearchResponse{}, domain.NewDomainError("SearXNGSearch.Run", domain.ErrInvalidInput, err.Error())
	}

	req := SearchRequest{
		Query:      query,
		Limit:      clampLimit(params.Limit),
		Categories: strings.TrimSpace(params.Categories),
		TimeRange:  strings.TrimSpace(params.TimeRange),
		Timeout:    settings.Timeout,
	}
	span.SetAttributes(
		tracer.StringAttr("search.query", req.Query),
		tracer.IntAttr("search.limit", req.Limit),
	)

	results, err := t.newBackend(settings.URL, logger).Search(ctx, req)
	if err != nil {
		logger.Error("searxng search failed",
			"query", req.Query,
			"error", err,
			"error_code", domain.ErrorCodeOf(err),
			"retryable", domain.IsRetryableError(err),
		)
		return SearchResponse{}, err
	}

	for i := range results {
		results[i].Snippet = truncateSnippet(results[i].Snippet)
	}
	span.SetAttributes(tracer.IntAttr("search.results", len(results)))
	logger.Info("searxng search completed", "query", req.Query, "results", len(results))
	return SearchResponse{Results: results, Count: len(results)}, nil
}

// clampLimit applies the default and bounds the limit to [1, maxSearchLimit].
func clampLimit(limit *int) int {
	if limit == nil {
		return defaultSearchLimit
	}
	return max(1, min(*limit, maxSearchLimit))
}

// truncateSnippet cuts snippets longer than maxSnippetRunes to 197 runes plus "...".
func truncateSnippet(s string) string {
	if len([]rune(s)) <= maxSnippetRunes {
		return s
	}
	return truncateRunes(s, maxSnippetRunes-3) + "..."
}

// errorResponse is the failure shape: no results and a bounded error message.
func errorResponse(err error) SearchResponse {
	return SearchResponse{
		Results: []SearchResult{},
		Error:   truncateRunes(err.Error(), maxErrorRunes),
	}
}

// mergeConfig layers per-call overrides on top of the tool's configuration.
func mergeConfig(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	maps.Copy(merged, base)
	for k, v := range override {
		if strings.TrimSpace(v) != "" {
			merged[k] = v
		}
	}
	return merged
}

func invocationAttrs(searchID, topic string, telemetry map[string]string) []any {
	attrs := []any{"search_id", searchID}
	if topic != "" {
		attrs = append(attrs, "topic", topic)
	}
	for _, k := range sortedKeys(telemetry) {
		attrs = append(attrs, "telemetry."+k, telemetry[k])
	}
	return attrs
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newSearchID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
