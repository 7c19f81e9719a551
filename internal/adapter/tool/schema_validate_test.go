package tool

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"searxng-tool/internal/domain"
)

// stubTool is a minimal tool with a configurable schema.
type stubTool struct {
	name   string
	schema json.RawMessage
	result *domain.ToolResult
	calls  int
}

func (s *stubTool) Name() string        { return s.name }
func (s *stubTool) Description() string { return "stub" }
func (s *stubTool) Schema() domain.ToolSchema {
	return domain.ToolSchema{Name: s.name, Description: "stub", Parameters: s.schema}
}
func (s *stubTool) Execute(_ context.Context, _ json.RawMessage) (*domain.ToolResult, error) {
	s.calls++
	return s.result, nil
}

func searchSchemaStub() *stubTool {
	return &stubTool{
		name:   "searxng_search",
		schema: NewSearXNGSearchTool(nil, nopLogger()).Schema().Parameters,
		result: &domain.ToolResult{Content: "ok"},
	}
}

func TestSchemaValidation_SearchParams(t *testing.T) {
	tests := []struct {
		name    string
		params  string
		wantErr bool
	}{
		{"query only", `{"query":"golang"}`, false},
		{"all fields", `{"topic":"t","query":"q","limit":50,"categories":"it","time_range":"day"}`, false},
		{"negative limit passes through to clamping", `{"query":"q","limit":-1}`, false},
		{"missing query", `{"limit":5}`, true},
		{"numeric query", `{"query":7}`, true},
		{"string limit", `{"query":"q","limit":"5"}`, true},
		{"fractional limit", `{"query":"q","limit":1.5}`, true},
		{"array categories", `{"query":"q","categories":["it"]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := searchSchemaStub()
			wrapped, err := WithSchemaValidation(inner)
			if err != nil {
				t.Fatalf("compile: %v", err)
			}

			result, err := wrapped.Execute(context.Background(), json.RawMessage(tt.params))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.IsError != tt.wantErr {
				t.Errorf("IsError = %v, want %v (content: %s)", result.IsError, tt.wantErr, result.Content)
			}
			if tt.wantErr {
				if inner.calls != 0 {
					t.Error("inner tool must not run when validation fails")
				}
				if !strings.Contains(result.Content, "schema validation failed") {
					t.Errorf("unexpected content: %s", result.Content)
				}
			}
		})
	}
}

func TestSchemaValidation_InvalidJSON(t *testing.T) {
	wrapped, err := WithSchemaValidation(searchSchemaStub())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	result, err := wrapped.Execute(context.Background(), json.RawMessage(`{"query":`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError || !strings.Contains(result.Content, "invalid JSON") {
		t.Errorf("expected invalid JSON result, got %+v", result)
	}
}

func TestSchemaValidation_NoSchema_Passthrough(t *testing.T) {
	for _, raw := range []json.RawMessage{nil, json.RawMessage(`null`)} {
		inner := &stubTool{name: "plain", schema: raw}
		wrapped, err := WithSchemaValidation(inner)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if wrapped != inner {
			t.Errorf("expected passthrough for schema %q", string(raw))
		}
	}
}

func TestSchemaValidation_CompilationError(t *testing.T) {
	inner := &stubTool{name: "broken", schema: json.RawMessage(`{"type": "invalid_type"}`)}
	if _, err := WithSchemaValidation(inner); err == nil {
		t.Fatal("expected error for invalid schema")
	}
}

func TestSchemaValidation_DelegatesMetadata(t *testing.T) {
	wrapped, err := WithSchemaValidation(searchSchemaStub())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wrapped.Name() != "searxng_search" {
		t.Errorf("Name() = %q", wrapped.Name())
	}
	if wrapped.Description() != "stub" {
		t.Errorf("Description() = %q", wrapped.Description())
	}
	if wrapped.Schema().Name != "searxng_search" {
		t.Errorf("Schema().Name = %q", wrapped.Schema().Name)
	}
}
