package output

import (
	"fmt"
	"io"
	"strings"
)

// Format represents the output format.
type Format = string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// ValidFormat reports whether format names a known formatter. Empty means table.
func ValidFormat(format string) bool {
	_, err := ParseFormat(format)
	return err == nil
}

// ParseFormat parses a format name; empty means FormatTable.
func ParseFormat(format string) (Format, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

// NewFormatter creates a formatter for the given format.
func NewFormatter(format Format, wide bool) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{Wide: wide}
	}
}
