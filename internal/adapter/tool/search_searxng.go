package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"searxng-tool/internal/domain"
	"searxng-tool/internal/infra/tracer"
)

const maxSearchBodySize = 2 << 20 // 2MB

// searxngResponse models the relevant portion of the SearXNG JSON response.
type searxngResponse struct {
	Results []searxngResult `json:"results"`
}

type searxngResult struct {
	Title   string   `json:"title"`
	URL     string   `json:"url"`
	Content string   `json:"content"`
	Engines []string `json:"engines"`
}

// SearXNGBackend searches the web via a SearXNG instance.
// It keeps no per-search state and is safe for concurrent use.
type SearXNGBackend struct {
	client      *http.Client
	instanceURL string
	maxAttempts int
	baseDelay   time.Duration
	sleep       func(ctx context.Context, d time.Duration) error // for testing
	logger      *slog.Logger
}

// NewSearXNGBackend creates a search backend backed by a SearXNG instance.
// Request timeouts are applied per attempt from SearchRequest.Timeout.
func NewSearXNGBackend(instanceURL string, logger *slog.Logger) *SearXNGBackend {
	return &SearXNGBackend{
		client:      &http.Client{},
		instanceURL: strings.TrimRight(instanceURL, "/"),
		maxAttempts: maxSearchAttempts,
		baseDelay:   baseRetryDelay,
		sleep:       sleepContext,
		logger:      logger,
	}
}

func (b *SearXNGBackend) Name() string { return "searxng" }

// Search posts the query to <instance>/search, retrying transient failures
// (HTTP 429/502/503/504 or a rate-limited transport error) with exponential
// backoff. Any other failure is returned immediately.
func (b *SearXNGBackend) Search(ctx context.Context, req SearchRequest) ([]SearchResult, error) {
	ctx, span := tracer.StartSpan(ctx, "searxng.search",
		trace.WithAttributes(
			tracer.StringAttr("search.id", domain.SearchIDFromContext(ctx)),
			tracer.StringAttr("searxng.url", b.instanceURL),
			tracer.IntAttr("searxng.limit", req.Limit),
		),
	)
	defer span.End()

	form := searchForm(req)

	var lastErr error
	for attempt := 0; attempt < b.maxAttempts; attempt++ {
		results, retryable, err := b.attempt(ctx, form, req)
		if err == nil {
			span.SetAttributes(tracer.IntAttr("searxng.attempts", attempt+1))
			tracer.SetOK(span)
			b.logger.Debug("searxng search completed",
				"query", req.Query, "results", len(results), "attempts", attempt+1)
			return results, nil
		}

		lastErr = err
		tracer.AddEvent(span, "searxng.attempt_failed",
			tracer.IntAttr("attempt", attempt+1),
			tracer.BoolAttr("retryable", retryable),
			tracer.StringAttr("error", err.Error()),
		)
		if !retryable {
			tracer.RecordError(span, err)
			return nil, err
		}
		if attempt == b.maxAttempts-1 {
			break
		}

		delay := backoffDelay(b.baseDelay, attempt)
		b.logger.Warn("searxng search failed, retrying",
			"attempt", attempt+1,
			"max_attempts", b.maxAttempts,
			"delay", delay,
			"error", err,
		)
		if err := b.sleep(ctx, delay); err != nil {
			err = fmt.Errorf("backoff interrupted: %w", err)
			tracer.RecordError(span, err)
			return nil, err
		}
	}

	err := exhaustedError(lastErr, b.maxAttempts)
	tracer.RecordError(span, err)
	return nil, err
}

// attempt performs a single HTTP round trip and reports whether a failure is worth retrying.
func (b *SearXNGBackend) attempt(ctx context.Context, form url.Values, req SearchRequest) ([]SearchResult, bool, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.instanceURL+"/search", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, fmt.Errorf("search request: %w after %s: %w", domain.ErrTimeout, req.Timeout, err)
		}
		err = fmt.Errorf("search request: %w", err)
		return nil, isRateLimitError(err), err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize))
	if err != nil {
		err = fmt.Errorf("read response: %w", err)
		return nil, isRateLimitError(err), err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
		return nil, se.Retryable(), se
	}

	var searxResp searxngResponse
	if err := json.Unmarshal(body, &searxResp); err != nil {
		return nil, false, fmt.Errorf("parse response: %w", err)
	}

	return mapResults(searxResp.Results, req.Limit), false, nil
}

// searchForm builds the form body. Empty optional filters are omitted.
func searchForm(req SearchRequest) url.Values {
	form := url.Values{}
	form.Set("q", req.Query)
	form.Set("format", "json")
	form.Set("pageno", "1")
	if req.Categories != "" {
		form.Set("categories", req.Categories)
	}
	if req.TimeRange != "" {
		form.Set("time_range", req.TimeRange)
	}
	return form
}

// mapResults keeps the first occurrence of each non-empty URL, in backend
// order, and stops as soon as limit results are collected.
func mapResults(items []searxngResult, limit int) []SearchResult {
	results := make([]SearchResult, 0, min(limit, len(items)))
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if item.URL == "" {
			continue
		}
		if _, dup := seen[item.URL]; dup {
			continue
		}
		seen[item.URL] = struct{}{}

		results = append(results, SearchResult{
			Title:   item.Title,
			Snippet: item.Content,
			URL:     item.URL,
			Engine:  engineLabel(item.Engines),
		})
		if len(results) >= limit {
			break
		}
	}
	return results
}

// engineLabel joins the contributing engines; a missing list becomes "unknown".
func engineLabel(engines []string) string {
	if engines == nil {
		return "unknown"
	}
	return strings.Join(engines, ", ")
}

// exhaustedError reports a retry loop that ran out of attempts.
func exhaustedError(last error, attempts int) error {
	var se *StatusError
	if errors.As(last, &se) {
		return domain.NewDomainError("SearXNG.Search", domain.ErrRetriesExhausted,
			fmt.Sprintf("%d attempts, last response HTTP %d", attempts, se.StatusCode))
	}
	return fmt.Errorf("%w after %d attempts: %w", domain.ErrRetriesExhausted, attempts, last)
}
