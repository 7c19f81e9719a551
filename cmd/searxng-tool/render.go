package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"searxng-tool/internal/adapter/tool"
)

const (
	formatJSON   = "json"
	formatPretty = "pretty"
	prettyWidth  = 100
)

func validateFormat(format string) error {
	switch format {
	case "", formatJSON, formatPretty:
		return nil
	}
	return fmt.Errorf("unsupported format %q (want: json, pretty)", format)
}

// writeResponse prints resp as indented JSON or as terminal-rendered markdown.
func writeResponse(w io.Writer, format, query string, resp tool.SearchResponse) error {
	if format != formatPretty {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	md := responseMarkdown(query, resp)
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(prettyWidth),
	)
	if err != nil {
		// Rendering is cosmetic; fall back to raw markdown.
		_, werr := io.WriteString(w, md)
		return werr
	}
	out, err := r.Render(md)
	if err != nil {
		_, werr := io.WriteString(w, md)
		return werr
	}
	_, err = io.WriteString(w, out)
	return err
}

func responseMarkdown(query string, resp tool.SearchResponse) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Results for %q\n\n", query)

	if resp.Error != "" {
		fmt.Fprintf(&sb, "**Search failed:** %s\n", resp.Error)
		return sb.String()
	}
	if resp.Count == 0 {
		sb.WriteString("_No results._\n")
		return sb.String()
	}

	for i, r := range resp.Results {
		title := r.Title
		if title == "" {
			title = r.URL
		}
		fmt.Fprintf(&sb, "%d. **%s**  \n", i+1, title)
		fmt.Fprintf(&sb, "   <%s>  \n", r.URL)
		if r.Snippet != "" {
			fmt.Fprintf(&sb, "   %s  \n", r.Snippet)
		}
		fmt.Fprintf(&sb, "   _via %s_\n\n", r.Engine)
	}
	return sb.String()
}
