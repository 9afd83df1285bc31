package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/hal/testhound/internal/pipeline"
)

// LiveWriter streams findings to a CSV file as they are appended, so
// partial results survive an interrupted run. Rows are flushed per
// append; the file is valid CSV at any point.
type LiveWriter struct {
	file *os.File
	enc  *csv.Writer
}

// NewLiveWriter creates the live output file and writes the header.
func NewLiveWriter(path string) (*LiveWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create live output file: %w", err)
	}

	enc := csv.NewWriter(f)
	if err := enc.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write live output header: %w", err)
	}
	enc.Flush()
	if err := enc.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &LiveWriter{file: f, enc: enc}, nil
}

// Hook returns a pipeline hook that appends each finding as a row.
func (lw *LiveWriter) Hook() pipeline.Hook {
	return func(f pipeline.Finding) error {
		if err := lw.enc.Write(csvRow(f)); err != nil {
			return err
		}
		lw.enc.Flush()
		return lw.enc.Error()
	}
}

// Close flushes and closes the live output file.
func (lw *LiveWriter) Close() error {
	lw.enc.Flush()
	if err := lw.enc.Error(); err != nil {
		lw.file.Close()
		return err
	}
	return lw.file.Close()
}

// Path returns the live output file path.
func (lw *LiveWriter) Path() string {
	return lw.file.Name()
}
