package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"searxng-tool/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.MCP.Name != "searxng-tool" {
		t.Errorf("MCP.Name = %q, want %q", cfg.MCP.Name, "searxng-tool")
	}
	if cfg.Search.SearXNGURL != "" {
		t.Errorf("Search.SearXNGURL = %q, want empty (env/default fallback)", cfg.Search.SearXNGURL)
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Format != "text" {
		t.Errorf("expected defaults, got Logger.Format=%q", cfg.Logger.Format)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "searxng-tool.yaml")
	content := `
search:
  searxng_url: "http://searx.internal:8888"
  searxng_timeout: 3
logger:
  level: "debug"
  format: "json"
mcp:
  name: "web"
  version: "1.2.3"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Search.SearXNGURL != "http://searx.internal:8888" {
		t.Errorf("SearXNGURL = %q", cfg.Search.SearXNGURL)
	}
	if cfg.Search.SearXNGTimeout != 3 {
		t.Errorf("SearXNGTimeout = %d, want 3", cfg.Search.SearXNGTimeout)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.MCP.Name != "web" || cfg.MCP.Version != "1.2.3" {
		t.Errorf("MCP = %+v", cfg.MCP)
	}
	// Unset sections keep their defaults.
	if cfg.Tracer.Exporter != "noop" {
		t.Errorf("Tracer.Exporter = %q, want %q", cfg.Tracer.Exporter, "noop")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEARXNGTOOL_LOGGER_LEVEL", "debug")
	t.Setenv("SEARXNGTOOL_LOGGER_FORMAT", "json")
	t.Setenv("SEARXNGTOOL_LOGGER_OUTPUT", "stdout")
	t.Setenv("SEARXNGTOOL_TRACER_ENABLED", "true")
	t.Setenv("SEARXNGTOOL_TRACER_EXPORTER", "stdout")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "debug")
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("Logger.Format = %q, want %q", cfg.Logger.Format, "json")
	}
	if cfg.Logger.Output != "stdout" {
		t.Errorf("Logger.Output = %q, want %q", cfg.Logger.Output, "stdout")
	}
	if !cfg.Tracer.Enabled || cfg.Tracer.Exporter != "stdout" {
		t.Errorf("Tracer = %+v", cfg.Tracer)
	}
}

func TestEnvOverridesLeaveSearchAlone(t *testing.T) {
	t.Setenv("SEARXNG_URL", "http://from-env:8080")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Search.SearXNGURL != "" {
		t.Errorf("SearXNGURL = %q, want empty; env is resolved per invocation", cfg.Search.SearXNGURL)
	}
}

func TestLoadInsecurePermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "insecure.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  level: info\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0666); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("expected error for insecure permissions")
	}
}

func TestValidatePermissionsOK(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yaml")
	os.WriteFile(path, []byte("test"), 0600)
	if err := validatePermissions(path); err != nil {
		t.Errorf("validatePermissions: %v", err)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("invalid: [yaml: bad"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Errorf("expected ErrConfigLoad, got %v", err)
	}
}

func TestLoadUnreadable(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Errorf("expected ErrConfigLoad for a directory path, got %v", err)
	}
}

func TestLoadValidationFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("search:\n  searxng_url: \"ftp://nope\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("error type = %T, want *ValidationError", err)
	}
}

func TestSearchConfigAsToolConfig(t *testing.T) {
	empty := SearchConfig{}.AsToolConfig()
	if len(empty) != 0 {
		t.Errorf("empty SearchConfig produced %v, want no keys", empty)
	}

	m := SearchConfig{SearXNGURL: "http://s:1", SearXNGTimeout: 4}.AsToolConfig()
	if m[KeySearXNGURL] != "http://s:1" {
		t.Errorf("%s = %q", KeySearXNGURL, m[KeySearXNGURL])
	}
	if m[KeySearXNGTimeout] != "4" {
		t.Errorf("%s = %q", KeySearXNGTimeout, m[KeySearXNGTimeout])
	}
}
