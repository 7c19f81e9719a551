package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"searxng-tool/internal/domain"
)

// DefaultPath is the config file looked up when no --config flag is given.
const DefaultPath = "./searxng-tool.yaml"

// Config is the top-level application configuration.
type Config struct {
	Search SearchConfig `yaml:"search"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
	MCP    MCPConfig    `yaml:"mcp"`
}

// SearchConfig holds the explicit SearXNG settings handed to the search tool.
// Empty values fall through to the process environment, then to built-in defaults.
type SearchConfig struct {
	SearXNGURL     string `yaml:"searxng_url"`
	SearXNGTimeout int    `yaml:"searxng_timeout"` // seconds, per attempt
}

// MCPConfig holds the MCP server identity.
type MCPConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		MCP: MCPConfig{
			Name:    "searxng-tool",
			Version: "0.1.0",
		},
	}
}

// AsToolConfig returns the explicit config mapping passed to each search invocation.
// Unset fields are omitted so ResolveSearXNG falls through to the environment.
func (c SearchConfig) AsToolConfig() map[string]string {
	m := make(map[string]string, 2)
	if c.SearXNGURL != "" {
		m[KeySearXNGURL] = c.SearXNGURL
	}
	if c.SearXNGTimeout > 0 {
		m[KeySearXNGTimeout] = strconv.Itoa(c.SearXNGTimeout)
	}
	return m
}

// Load reads a YAML config file, applies env var overrides, and validates.
// A missing file is not an error: defaults plus env overrides are returned.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfigLoad, path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps SEARXNGTOOL_* env vars to config fields.
// SEARXNG_URL and SEARXNG_TIMEOUT are not applied here; they are the
// per-invocation fallback resolved by ResolveSearXNG.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEARXNGTOOL_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("SEARXNGTOOL_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("SEARXNGTOOL_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("SEARXNGTOOL_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("SEARXNGTOOL_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
}

// validatePermissions rejects config files writable by group or others.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Allow 0600 and 0644 (readable by others but not writable)
	if mode&0o077 > 0o044 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
