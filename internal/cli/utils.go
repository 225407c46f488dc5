// Package cli provides output helpers for the wonderland command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/wonderland/internal/models"
	"github.com/hyperjump/wonderland/pkg/utils"
)

// OutputFormat is the format for query and health output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// previewLen caps each passage in text output.
const previewLen = 400

// ParseOutputFormat maps a flag value to an OutputFormat.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteQueryResults writes a query response to w in the given format.
func WriteQueryResults(w io.Writer, response *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nQuery: %s\nFound %d passage(s)\n\n", response.Query, len(response.Contexts))
	for i, c := range response.Contexts {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "[%d]\n%s\n\n", i+1, utils.Truncate(c, previewLen))
	}
	return nil
}

// WriteHealth writes a health response to w in the given format.
func WriteHealth(w io.Writer, health *models.HealthResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, health)
	}
	loaded := "no"
	if health.VectorDBLoaded {
		loaded = "yes"
	}
	fmt.Fprintf(w, "Status: %s\nVector DB loaded: %s\nDirectory: %s\n",
		health.Status, loaded, health.CurrentDirectory)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
