package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"searxng-tool/internal/domain"
)

// Keys of the explicit per-invocation config mapping. They double as the
// names of the environment variables consulted as fallback.
const (
	KeySearXNGURL     = "SEARXNG_URL"
	KeySearXNGTimeout = "SEARXNG_TIMEOUT"
)

// Built-in fallbacks used when neither the explicit config nor the environment set a value.
const (
	DefaultSearXNGURL            = "http://localhost:8080"
	DefaultSearXNGTimeoutSeconds = 10
)

// SearXNGSettings are the resolved backend settings for one invocation.
type SearXNGSettings struct {
	URL     string
	Timeout time.Duration
}

// ResolveSearXNG resolves the backend URL and per-attempt timeout.
// For each key the first non-empty source wins: explicit, getenv(key), built-in default.
// getenv may be nil, in which case the environment is skipped.
func ResolveSearXNG(explicit map[string]string, getenv func(string) string) (SearXNGSettings, error) {
	lookup := func(key string) string {
		if v := strings.TrimSpace(explicit[key]); v != "" {
			return v
		}
		if getenv != nil {
			return strings.TrimSpace(getenv(key))
		}
		return ""
	}

	s := SearXNGSettings{
		URL:     DefaultSearXNGURL,
		Timeout: DefaultSearXNGTimeoutSeconds * time.Second,
	}
	if v := lookup(KeySearXNGURL); v != "" {
		s.URL = v
	}
	if v := lookup(KeySearXNGTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return SearXNGSettings{}, domain.NewDomainError("config.ResolveSearXNG", domain.ErrInvalidInput,
				fmt.Sprintf("%s must be a positive integer number of seconds, got %q", KeySearXNGTimeout, v))
		}
		s.Timeout = time.Duration(secs) * time.Second
	}
	return s, nil
}
