package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hal/testhound/internal/pipeline"
)

// csvHeader is the column set of the CSV report.
var csvHeader = []string{
	"repo_name", "repo_url", "repo_stars", "repo_size_mb", "repo_description",
	"pr_number", "pr_title", "pr_url", "pr_merged_at",
	"total_lines_changed", "total_additions", "total_deletions",
	"test_files_changed", "code_files_changed", "new_test_files_added",
	"estimated_new_tests",
	"test_file_line_changes", "code_file_line_changes",
	"test_files_list", "code_files_list",
}

// maxListedCodeFiles caps the code-file list column so one giant PR
// cannot blow up the row width.
const maxListedCodeFiles = 10

// CSVWriter renders findings as CSV rows, one per qualifying PR.
type CSVWriter struct{}

// Write renders the full finding list.
func (cw *CSVWriter) Write(findings []pipeline.Finding, w io.Writer) error {
	enc := csv.NewWriter(w)
	if err := enc.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, f := range findings {
		if err := enc.Write(csvRow(f)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	enc.Flush()
	return enc.Error()
}

// csvRow flattens one finding into the report columns.
func csvRow(f pipeline.Finding) []string {
	mergedAt := ""
	if f.PR.MergedAt != nil {
		mergedAt = f.PR.MergedAt.Format(time.RFC3339)
	}

	codeFiles := f.Analysis.CodeFiles
	if len(codeFiles) > maxListedCodeFiles {
		codeFiles = codeFiles[:maxListedCodeFiles]
	}

	return []string{
		f.Repo.FullName,
		f.Repo.HTMLURL,
		strconv.Itoa(f.Repo.Stars),
		fmt.Sprintf("%.2f", float64(f.Repo.SizeKB)/1024),
		flatten(f.Repo.Description),
		strconv.Itoa(f.PR.Number),
		flatten(f.PR.Title),
		f.PR.HTMLURL,
		mergedAt,
		strconv.Itoa(f.Analysis.TotalChanges),
		strconv.Itoa(f.Analysis.TotalAdditions),
		strconv.Itoa(f.Analysis.TotalDeletions),
		strconv.Itoa(len(f.Analysis.TestFiles)),
		strconv.Itoa(len(f.Analysis.CodeFiles)),
		strconv.Itoa(len(f.Analysis.NewTestFiles)),
		strconv.Itoa(f.Analysis.EstimatedNewTests),
		strconv.Itoa(f.Analysis.TestFileChanges),
		strconv.Itoa(f.Analysis.CodeFileChanges),
		strings.Join(f.Analysis.TestFiles, "; "),
		strings.Join(codeFiles, "; "),
	}
}

// flatten collapses newlines so free-form text stays on one row.
func flatten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
