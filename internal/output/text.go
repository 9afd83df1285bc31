package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hal/testhound/internal/format"
	"github.com/hal/testhound/internal/pipeline"
)

// TextWriter renders findings as a human-readable report grouped by
// repository, preserving append order.
type TextWriter struct{}

// Write renders the full finding list.
func (tw *TextWriter) Write(findings []pipeline.Finding, w io.Writer) error {
	fmt.Fprintln(w, "Test-Adding Pull Request Report")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Generated: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Total PRs found: %d\n", len(findings))

	currentRepo := ""
	repoCount := 0

	for _, f := range findings {
		if f.Repo.FullName != currentRepo {
			currentRepo = f.Repo.FullName
			repoCount++
			fmt.Fprintf(w, "\n%d. REPOSITORY: %s\n", repoCount, f.Repo.FullName)
			fmt.Fprintf(w, "   URL: %s\n", f.Repo.HTMLURL)
			fmt.Fprintf(w, "   Stars: %d\n", f.Repo.Stars)
			fmt.Fprintf(w, "   Size: %s\n", format.SizeMB(f.Repo.SizeKB))
			if f.Repo.Description != "" {
				fmt.Fprintf(w, "   Description: %s\n", f.Repo.Description)
			}
			fmt.Fprintln(w, "   "+strings.Repeat("-", 50))
		}

		fmt.Fprintf(w, "   PR #%d: %s\n", f.PR.Number, f.PR.Title)
		fmt.Fprintf(w, "   URL: %s\n", f.PR.HTMLURL)
		if f.PR.MergedAt != nil {
			fmt.Fprintf(w, "   Merged: %s\n", f.PR.MergedAt.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "   Total lines changed: %d (+%d/-%d)\n",
			f.Analysis.TotalChanges, f.Analysis.TotalAdditions, f.Analysis.TotalDeletions)
		fmt.Fprintf(w, "   Test files changed: %d (%d lines)\n",
			len(f.Analysis.TestFiles), f.Analysis.TestFileChanges)
		fmt.Fprintf(w, "   Code files changed: %d (%d lines)\n",
			len(f.Analysis.CodeFiles), f.Analysis.CodeFileChanges)
		if len(f.Analysis.NewTestFiles) > 0 {
			fmt.Fprintf(w, "   New test files: %d\n", len(f.Analysis.NewTestFiles))
		}
		if f.Analysis.EstimatedNewTests > 0 {
			fmt.Fprintf(w, "   Estimated new test cases: %d\n", f.Analysis.EstimatedNewTests)
		}
		fmt.Fprintln(w)
	}

	return nil
}
