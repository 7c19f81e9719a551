package config

import (
	"strings"
	"testing"
)

func TestValidateDefaultsPass(t *testing.T) {
	cfg := Defaults()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Defaults should pass validation: %v", err)
	}
}

func TestValidateSearchURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"ftp://searx.local", "scheme must be http or https"},
		{"http://", "missing a host"},
		{"://bad", "search.searxng_url is invalid"},
	}
	for _, tt := range tests {
		cfg := Defaults()
		cfg.Search.SearXNGURL = tt.url
		err := Validate(cfg)
		if err == nil {
			t.Fatalf("url %q: expected validation error", tt.url)
		}
		assertContains(t, err.Error(), tt.want)
	}
}

func TestValidateSearchURLOK(t *testing.T) {
	cfg := Defaults()
	cfg.Search.SearXNGURL = "https://search.example.org"
	if err := Validate(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateSearchTimeoutNegative(t *testing.T) {
	cfg := Defaults()
	cfg.Search.SearXNGTimeout = -1
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "search.searxng_timeout must be >= 0")
}

func TestValidateLogger(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "loud"
	cfg.Logger.Format = "xml"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `logger.level "loud" is invalid`)
	assertContains(t, err.Error(), `logger.format "xml" is invalid`)
}

func TestValidateTracerExporter(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Enabled = true
	cfg.Tracer.Exporter = "jaeger"
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), `tracer.exporter "jaeger" is invalid`)
}

func TestValidateTracerExporterIgnoredWhenDisabled(t *testing.T) {
	cfg := Defaults()
	cfg.Tracer.Exporter = "jaeger"
	if err := Validate(cfg); err != nil {
		t.Errorf("disabled tracer should not be validated: %v", err)
	}
}

func TestValidateMCP(t *testing.T) {
	cfg := Defaults()
	cfg.MCP.Name = ""
	cfg.MCP.Version = ""
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	assertContains(t, err.Error(), "mcp.name must not be empty")
	assertContains(t, err.Error(), "mcp.version must not be empty")
}

func TestValidationErrorAccumulates(t *testing.T) {
	cfg := Defaults()
	cfg.Logger.Level = "x"
	cfg.MCP.Name = ""
	err := Validate(cfg)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if len(ve.Errors) != 2 {
		t.Errorf("len(Errors) = %d, want 2: %v", len(ve.Errors), ve.Errors)
	}
}

func assertContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}
