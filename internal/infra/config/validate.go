package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateSearch(cfg, ve)
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateMCP(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

func validateSearch(cfg *Config, ve *ValidationError) {
	if raw := cfg.Search.SearXNGURL; raw != "" {
		u, err := url.Parse(raw)
		switch {
		case err != nil:
			ve.Add("search.searxng_url is invalid: %v", err)
		case u.Scheme != "http" && u.Scheme != "https":
			ve.Add("search.searxng_url scheme must be http or https, got %q", u.Scheme)
		case u.Host == "":
			ve.Add("search.searxng_url is missing a host")
		}
	}
	if cfg.Search.SearXNGTimeout < 0 {
		ve.Add("search.searxng_timeout must be >= 0 (0 = use SEARXNG_TIMEOUT or default)")
	}
}

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "warning": true, "error": true,
}

var validLogFormats = map[string]bool{
	"text": true, "json": true,
}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLogLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (want: debug, info, warn, error)", cfg.Logger.Level)
	}
	if !validLogFormats[strings.ToLower(cfg.Logger.Format)] {
		ve.Add("logger.format %q is invalid (want: text, json)", cfg.Logger.Format)
	}
}

var validExporters = map[string]bool{
	"noop": true, "stdout": true, "": true,
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if cfg.Tracer.Enabled && !validExporters[cfg.Tracer.Exporter] {
		ve.Add("tracer.exporter %q is invalid (want: noop, stdout)", cfg.Tracer.Exporter)
	}
}

func validateMCP(cfg *Config, ve *ValidationError) {
	if cfg.MCP.Name == "" {
		ve.Add("mcp.name must not be empty")
	}
	if cfg.MCP.Version == "" {
		ve.Add("mcp.version must not be empty")
	}
}
