// Package integration holds tests that talk to a live SearXNG instance.
// They are compiled only with the "integration" build tag.
package integration

import (
	"context"
	"os"
	"testing"
	"time"
)

// Config holds integration test configuration from environment
type Config struct {
	SearXNGURL  string
	TestTimeout time.Duration
	SkipSlow    bool
}

// LoadConfig loads integration test configuration from environment
func LoadConfig() *Config {
	return &Config{
		SearXNGURL:  os.Getenv("SEARXNG_INTEGRATION_URL"),
		TestTimeout: 60 * time.Second,
		SkipSlow:    os.Getenv("SKIP_SLOW_TESTS") == "1",
	}
}

// SkipIfNoInstance skips the test when no live SearXNG instance is configured.
func SkipIfNoInstance(t *testing.T, cfg *Config) {
	t.Helper()
	if cfg.SearXNGURL == "" {
		t.Skip("Skipping SearXNG integration test: SEARXNG_INTEGRATION_URL not set")
	}
}

// SkipIfShort skips integration tests in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestContext creates a context with timeout for integration tests
func NewTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
