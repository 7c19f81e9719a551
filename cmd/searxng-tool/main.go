package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"searxng-tool/internal/infra/config"
)

func main() {
	if len(os.Args) < 2 {
		showUsage(os.Stderr)
		os.Exit(2)
	}

	ctx := context.Background()
	args := os.Args[2:]

	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage(os.Stdout)
	case "search":
		if err := runSearch(ctx, args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "search: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := runServe(ctx, args, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "serve: %v\n", err)
			os.Exit(1)
		}
	case "doctor":
		if err := runDoctor(ctx, args, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'searxng-tool --help' for usage information.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage(w io.Writer) {
	fmt.Fprintln(w, `searxng-tool - web search through a self-hosted SearXNG instance

USAGE:
    searxng-tool COMMAND [FLAGS] [ARGS]

COMMANDS:
    search QUERY...   Run one search and print the results
    serve             Serve the searxng_search tool over MCP (stdio)
    doctor            Check configuration and SearXNG connectivity

FLAGS:
    -h, --help           Show this help message
    --config PATH        Config file path (default: ./searxng-tool.yaml)
    --topic TOPIC        Caller topic recorded in logs and traces (search)
    --limit N            Maximum results, clamped to 1-20 (search, default: 5)
    --categories LIST    SearXNG categories, e.g. "general,it" (search)
    --time-range RANGE   SearXNG time range, e.g. day, month, year (search)
    --format FORMAT      Output format: json or pretty (search, default: json)

CONFIGURATION:
    Config file:  ./searxng-tool.yaml (or SEARXNGTOOL_CONFIG)
    SearXNG:      SEARXNG_URL (default http://localhost:8080)
                  SEARXNG_TIMEOUT seconds per attempt (default 10)
    Logging:      SEARXNGTOOL_LOGGER_LEVEL, SEARXNGTOOL_LOGGER_FORMAT, SEARXNGTOOL_LOGGER_OUTPUT
    Tracing:      SEARXNGTOOL_TRACER_ENABLED, SEARXNGTOOL_TRACER_EXPORTER

EXAMPLES:
    searxng-tool search golang generics
    searxng-tool search --limit 3 --format pretty "rust async runtimes"
    searxng-tool serve --config /etc/searxng-tool.yaml
    searxng-tool doctor`)
}

// cliFlags holds the flags shared by all commands. Not every command accepts every flag.
type cliFlags struct {
	ConfigPath string
	Topic      string
	Limit      *int
	Categories string
	TimeRange  string
	Format     string
	Args       []string
}

var errMissingValue = errors.New("missing value")

// parseFlags accepts "--name value" and "--name=value"; remaining words are positional.
// A bare "--" ends flag parsing.
func parseFlags(args []string, allowed ...string) (cliFlags, error) {
	var flags cliFlags
	permitted := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		permitted[a] = true
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			flags.Args = append(flags.Args, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "--") {
			flags.Args = append(flags.Args, arg)
			continue
		}

		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if !permitted[name] {
			return cliFlags{}, fmt.Errorf("unknown flag --%s", name)
		}
		if !hasValue {
			if i+1 >= len(args) {
				return cliFlags{}, fmt.Errorf("--%s: %w", name, errMissingValue)
			}
			value = args[i+1]
			i++
		}

		switch name {
		case "config":
			flags.ConfigPath = value
		case "topic":
			flags.Topic = value
		case "limit":
			n, err := strconv.Atoi(value)
			if err != nil {
				return cliFlags{}, fmt.Errorf("--limit must be an integer, got %q", value)
			}
			flags.Limit = &n
		case "categories":
			flags.Categories = value
		case "time-range":
			flags.TimeRange = value
		case "format":
			flags.Format = value
		}
	}
	return flags, nil
}

// configPath resolves the config file: --config, then SEARXNGTOOL_CONFIG, then the default.
func configPath(flags cliFlags) string {
	if flags.ConfigPath != "" {
		return flags.ConfigPath
	}
	if p := os.Getenv("SEARXNGTOOL_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}
