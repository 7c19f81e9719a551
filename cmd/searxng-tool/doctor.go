package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"searxng-tool/internal/infra/config"
)

const doctorTimeout = 5 * time.Second

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(ctx context.Context, cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor(ctx context.Context, args []string, stdout io.Writer) error {
	flags, err := parseFlags(args, "config")
	if err != nil {
		return err
	}
	cfgPath := configPath(flags)

	// Some checks still run when the config fails to load.
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Search settings", Fn: checkSearchSettings},
		{Name: "SearXNG reachable", Fn: checkReachable},
		{Name: "SearXNG JSON format", Fn: checkJSONFormat},
	}

	fmt.Fprintln(stdout, "searxng-tool doctor")
	fmt.Fprintln(stdout, strings.Repeat("=", 50))
	fmt.Fprintln(stdout)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(ctx, cfg)
		result.Name = check.Name

		fmt.Fprintf(stdout, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(stdout, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, strings.Repeat("-", 50))
	fmt.Fprintf(stdout, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports whether the config file exists and loaded cleanly.
// A missing file is only a warning: defaults and the environment apply.
func checkConfigFile(cfgPath string, cfgErr error) func(context.Context, *config.Config) CheckResult {
	return func(context.Context, *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     fmt.Sprintf("Check the YAML syntax and values in %s", cfgPath),
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config file at %s, using defaults and environment", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

// resolveSettings applies the same precedence as a search invocation.
func resolveSettings(cfg *config.Config) (config.SearXNGSettings, error) {
	return config.ResolveSearXNG(cfg.Search.AsToolConfig(), os.Getenv)
}

func checkSearchSettings(_ context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusFail, Message: "cannot check: config not loaded"}
	}
	s, err := resolveSettings(cfg)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: err.Error(),
			Fix:     "Set SEARXNG_TIMEOUT (or search.searxng_timeout) to a positive number of seconds",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("url %s, timeout %s per attempt", s.URL, s.Timeout),
	}
}

// checkReachable performs a GET on the instance base URL.
func checkReachable(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusWarn, Message: "cannot check: config not loaded"}
	}
	s, err := resolveSettings(cfg)
	if err != nil {
		return CheckResult{Status: StatusWarn, Message: "skipped: invalid search settings"}
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("invalid SearXNG URL: %v", err),
		}
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("SearXNG not reachable at %s: %v", s.URL, err),
			Fix:     "Start SearXNG (e.g. docker run -p 8080:8080 searxng/searxng) or set SEARXNG_URL",
		}
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("SearXNG responded with status %d at %s", resp.StatusCode, s.URL),
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("SearXNG reachable at %s", s.URL),
	}
}

// checkJSONFormat posts a probe query and verifies the JSON output format is enabled.
// SearXNG answers 403 when "json" is missing from search.formats.
func checkJSONFormat(ctx context.Context, cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusWarn, Message: "cannot check: config not loaded"}
	}
	s, err := resolveSettings(cfg)
	if err != nil {
		return CheckResult{Status: StatusWarn, Message: "skipped: invalid search settings"}
	}

	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()

	form := url.Values{"q": {"searxng"}, "format": {"json"}, "pageno": {"1"}}
	endpoint := strings.TrimRight(s.URL, "/") + "/search"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("invalid SearXNG URL: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return CheckResult{Status: StatusFail, Message: fmt.Sprintf("probe search failed: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return CheckResult{
			Status:  StatusFail,
			Message: "SearXNG rejected format=json (HTTP 403)",
			Fix:     "Add json to search.formats in SearXNG's settings.yml",
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("probe search returned HTTP %d", resp.StatusCode),
		}
	}

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 2<<20)).Decode(&body); err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("probe response is not JSON: %v", err),
			Fix:     "Add json to search.formats in SearXNG's settings.yml",
		}
	}
	return CheckResult{
		Status:  StatusPass,
		Message: fmt.Sprintf("JSON format enabled (%d probe results)", len(body.Results)),
	}
}
