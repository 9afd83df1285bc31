package output

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/pipeline"
)

// fileFormats are the formats written to disk by FormatAll.
var fileFormats = []Format{FormatCSV, FormatJSON, FormatText}

// WriteReports writes the findings to one report file per requested
// format, named "<prefix>_<timestamp>.<ext>". The files are independent,
// so they are written concurrently. Returns the written paths.
func WriteReports(findings []pipeline.Finding, prefix string, format Format) ([]string, error) {
	formats := []Format{format}
	if format == FormatAll {
		formats = fileFormats
	}

	timestamp := time.Now().Format("20060102_150405")

	var g errgroup.Group
	paths := make([]string, len(formats))
	for i, f := range formats {
		f := f
		path := fmt.Sprintf("%s_%s.%s", prefix, timestamp, f)
		paths[i] = path
		g.Go(func() error {
			return writeReportFile(findings, f, path)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, p := range paths {
		log.Info("report written", "path", p)
	}
	return paths, nil
}

// writeReportFile renders one format to one file.
func writeReportFile(findings []pipeline.Finding, format Format, path string) error {
	w, err := NewWriter(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	if err := w.Write(findings, f); err != nil {
		return fmt.Errorf("failed to write %s report: %w", format, err)
	}
	return f.Sync()
}
