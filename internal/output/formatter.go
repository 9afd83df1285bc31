// Package output renders crawl findings as CSV, JSON, plain-text and
// terminal-table reports.
package output

import (
	"fmt"
	"io"

	"github.com/hal/testhound/internal/pipeline"
)

// Format represents a report output format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatText  Format = "txt"
	FormatTable Format = "table"
	FormatAll   Format = "all"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatText, FormatTable, FormatAll:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown output format %q (want csv, json, txt, table or all)", s)
	}
}

// Writer renders a full finding list to a stream.
type Writer interface {
	Write(findings []pipeline.Finding, w io.Writer) error
}

// NewWriter creates a writer for the specified file format. FormatAll
// and FormatTable are handled by the caller (multi-file fan-out and
// stdout rendering respectively).
func NewWriter(format Format) (Writer, error) {
	switch format {
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatText:
		return &TextWriter{}, nil
	default:
		return nil, fmt.Errorf("no file writer for format %q", format)
	}
}
