package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"searxng-tool/internal/adapter/tool"
)

type queryLog struct {
	mu      sync.Mutex
	queries []string
}

func (q *queryLog) add(s string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, s)
}

func (q *queryLog) all() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.queries...)
}

func newFakeSearXNG(t *testing.T) (*httptest.Server, *queryLog) {
	t.Helper()
	queries := &queryLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = r.ParseForm()
		queries.add(r.PostForm.Get("q"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"results":[
			{"title":"The Go Programming Language","url":"https://go.dev","content":"Build simple, secure, scalable systems","engines":["duckduckgo"]},
			{"title":"Go dup","url":"https://go.dev"},
			{"title":"Effective Go","url":"https://go.dev/doc/effective_go","content":"Tips","engines":["brave","google"]}
		]}`)
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}

func TestRunSearch_JSON(t *testing.T) {
	srv, queries := newFakeSearXNG(t)
	cfgPath := writeConfig(t, fmt.Sprintf("search:\n  searxng_url: %s\nlogger:\n  level: error\n", srv.URL))

	var out bytes.Buffer
	err := runSearch(context.Background(), []string{"--config", cfgPath, "--limit", "5", "golang", "docs"}, &out)
	if err != nil {
		t.Fatalf("runSearch: %v", err)
	}

	var resp tool.SearchResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("output is not a SearchResponse: %v\n%s", err, out.String())
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Fatalf("count = %d, results = %d, want 2", resp.Count, len(resp.Results))
	}
	if resp.Results[1].Engine != "brave, google" {
		t.Errorf("Engine = %q", resp.Results[1].Engine)
	}
	if got := queries.all(); len(got) != 1 || got[0] != "golang docs" {
		t.Errorf("queries = %v", got)
	}
}

func TestRunSearch_Pretty(t *testing.T) {
	srv, _ := newFakeSearXNG(t)
	cfgPath := writeConfig(t, fmt.Sprintf("search:\n  searxng_url: %s\nlogger:\n  level: error\n", srv.URL))

	var out bytes.Buffer
	if err := runSearch(context.Background(), []string{"--config", cfgPath, "--format", "pretty", "golang"}, &out); err != nil {
		t.Fatalf("runSearch: %v", err)
	}
	for _, want := range []string{"The Go Programming Language", "Effective Go"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("pretty output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunSearch_BackendErrorStillPrints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()
	cfgPath := writeConfig(t, fmt.Sprintf("search:\n  searxng_url: %s\nlogger:\n  level: error\n", srv.URL))

	var out bytes.Buffer
	err := runSearch(context.Background(), []string{"--config", cfgPath, "golang"}, &out)
	if err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Fatalf("expected HTTP 404 error, got %v", err)
	}

	var resp tool.SearchResponse
	if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
		t.Fatalf("output is not a SearchResponse: %v", err)
	}
	if resp.Error == "" || resp.Count != 0 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestRunSearch_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no query", []string{}, "a query is required"},
		{"blank query", []string{"  "}, "a query is required"},
		{"bad format", []string{"--format", "xml", "go"}, "unsupported format"},
		{"unknown flag", []string{"--pages", "2", "go"}, "unknown flag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runSearch(context.Background(), tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("runSearch(%v) = %v, want %q", tt.args, err, tt.want)
			}
		})
	}
}

func TestResponseMarkdown(t *testing.T) {
	md := responseMarkdown("go", tool.SearchResponse{
		Results: []tool.SearchResult{{Title: "", URL: "https://go.dev", Snippet: "Go", Engine: "unknown"}},
		Count:   1,
	})
	if !strings.Contains(md, "**https://go.dev**") {
		t.Errorf("empty title should fall back to URL:\n%s", md)
	}
	if !strings.Contains(md, "_via unknown_") {
		t.Errorf("missing engine line:\n%s", md)
	}

	empty := responseMarkdown("go", tool.SearchResponse{Results: []tool.SearchResult{}})
	if !strings.Contains(empty, "No results") {
		t.Errorf("unexpected empty markdown:\n%s", empty)
	}

	failed := responseMarkdown("go", tool.SearchResponse{Results: []tool.SearchResult{}, Error: "search failed (HTTP 500)"})
	if !strings.Contains(failed, "Search failed") {
		t.Errorf("unexpected error markdown:\n%s", failed)
	}
}
