package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hal/testhound/internal/classify"
	"github.com/hal/testhound/internal/model"
	"github.com/hal/testhound/internal/pipeline"
)

func sampleFindings() []pipeline.Finding {
	merged := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	return []pipeline.Finding{
		{
			Repo: model.Repo{
				FullName:    "octo/widgets",
				Stars:       240,
				SizeKB:      2048,
				Description: "A widget\nlibrary",
				HTMLURL:     "https://github.com/octo/widgets",
			},
			PR: model.PullRequest{
				Number:   7,
				Title:    "Add parser tests",
				HTMLURL:  "https://github.com/octo/widgets/pull/7",
				MergedAt: &merged,
				State:    "closed",
			},
			Analysis: classify.Result{
				HasTestChanges:    true,
				HasCodeChanges:    true,
				TestFiles:         []string{"tests/test_parser.py"},
				CodeFiles:         []string{"widgets/parser.py"},
				NewTestFiles:      []string{"tests/test_parser.py"},
				TotalAdditions:    31,
				TotalDeletions:    4,
				TotalChanges:      35,
				TestFileChanges:   21,
				CodeFileChanges:   14,
				EstimatedNewTests: 3,
			},
		},
		{
			Repo: model.Repo{
				FullName: "octo/widgets",
				Stars:    240,
				SizeKB:   2048,
				HTMLURL:  "https://github.com/octo/widgets",
			},
			PR: model.PullRequest{
				Number:   9,
				Title:    "Fix edge case",
				HTMLURL:  "https://github.com/octo/widgets/pull/9",
				MergedAt: &merged,
			},
			Analysis: classify.Result{
				HasTestChanges:    true,
				HasCodeChanges:    true,
				TestFiles:         []string{"tests/test_edge.py"},
				CodeFiles:         []string{"widgets/edge.py"},
				TotalChanges:      10,
				TotalAdditions:    8,
				TotalDeletions:    2,
				EstimatedNewTests: 1,
			},
		},
		{
			Repo: model.Repo{
				FullName: "acme/tools",
				Stars:    80,
				SizeKB:   512,
				HTMLURL:  "https://github.com/acme/tools",
			},
			PR: model.PullRequest{
				Number:   3,
				Title:    "Cover CLI paths",
				HTMLURL:  "https://github.com/acme/tools/pull/3",
				MergedAt: &merged,
			},
			Analysis: classify.Result{
				HasTestChanges:    true,
				HasCodeChanges:    true,
				TestFiles:         []string{"tests/test_cli.py"},
				CodeFiles:         []string{"tools/cli.py"},
				TotalChanges:      20,
				TotalAdditions:    15,
				TotalDeletions:    5,
				EstimatedNewTests: 2,
			},
		},
	}
}

func TestCSVWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&CSVWriter{}).Write(sampleFindings(), &buf); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 4 {
		t.Fatalf("expected header + 3 rows, got %d records", len(records))
	}
	if records[0][0] != "repo_name" {
		t.Errorf("header[0] = %q, want repo_name", records[0][0])
	}
	row := records[1]
	if row[0] != "octo/widgets" {
		t.Errorf("repo_name = %q", row[0])
	}
	// Multi-line description flattened onto one row.
	if strings.Contains(row[4], "\n") {
		t.Errorf("description contains newline: %q", row[4])
	}
	if row[5] != "7" {
		t.Errorf("pr_number = %q, want 7", row[5])
	}
	if row[15] != "3" {
		t.Errorf("estimated_new_tests = %q, want 3", row[15])
	}
}

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(sampleFindings(), &buf); err != nil {
		t.Fatal(err)
	}

	var report JSONReport
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatal(err)
	}

	if report.TotalPRs != 3 {
		t.Errorf("TotalPRs = %d, want 3", report.TotalPRs)
	}
	if report.UniqueRepos != 2 {
		t.Errorf("UniqueRepos = %d, want 2", report.UniqueRepos)
	}
	if len(report.Data) != 3 {
		t.Fatalf("Data length = %d, want 3", len(report.Data))
	}
	if report.Data[0].PR.Number != 7 {
		t.Errorf("first PR = %d, want 7 (append order)", report.Data[0].PR.Number)
	}
}

func TestJSONWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"data": null`) {
		t.Error("empty findings should encode as an empty array, not null")
	}
}

func TestTextWriterGroupsByRepo(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextWriter{}).Write(sampleFindings(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// Two repo sections, three PR entries.
	if got := strings.Count(out, "REPOSITORY:"); got != 2 {
		t.Errorf("repository sections = %d, want 2", got)
	}
	if got := strings.Count(out, "PR #"); got != 3 {
		t.Errorf("PR entries = %d, want 3", got)
	}
	if !strings.Contains(out, "Total PRs found: 3") {
		t.Error("missing total count line")
	}
}

func TestTableWriter(t *testing.T) {
	var buf bytes.Buffer
	tw := &TableWriter{Width: 100}
	if err := tw.Write(sampleFindings(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "REPOSITORY") {
		t.Error("missing table header")
	}
	if !strings.Contains(out, "octo/widgets") {
		t.Error("missing repo row")
	}
	if !strings.Contains(out, "3 qualifying PRs across 2 repositories") {
		t.Errorf("missing footer, got:\n%s", out)
	}
}

func TestTableWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableWriter{Width: 80}).Write(nil, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No test-adding pull requests found.") {
		t.Errorf("unexpected empty output: %q", buf.String())
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleFindings())

	if s.TotalPRs != 3 {
		t.Errorf("TotalPRs = %d, want 3", s.TotalPRs)
	}
	if s.UniqueRepos != 2 {
		t.Errorf("UniqueRepos = %d, want 2", s.UniqueRepos)
	}
	if s.TotalTestFiles != 3 {
		t.Errorf("TotalTestFiles = %d, want 3", s.TotalTestFiles)
	}
	if s.TotalNewTestFiles != 1 {
		t.Errorf("TotalNewTestFiles = %d, want 1", s.TotalNewTestFiles)
	}
	if s.EstimatedNewTests != 6 {
		t.Errorf("EstimatedNewTests = %d, want 6", s.EstimatedNewTests)
	}
	if s.TotalChanges != 65 {
		t.Errorf("TotalChanges = %d, want 65", s.TotalChanges)
	}
	if len(s.TopRepos) != 2 {
		t.Fatalf("TopRepos length = %d, want 2", len(s.TopRepos))
	}
	if s.TopRepos[0].FullName != "octo/widgets" || s.TopRepos[0].Count != 2 {
		t.Errorf("TopRepos[0] = %+v, want octo/widgets with 2", s.TopRepos[0])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalPRs != 0 || s.UniqueRepos != 0 {
		t.Errorf("unexpected non-zero summary: %+v", s)
	}
}

func TestLiveWriterAppendsIncrementally(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.csv")
	lw, err := NewLiveWriter(path)
	if err != nil {
		t.Fatal(err)
	}

	hook := lw.Hook()
	findings := sampleFindings()

	if err := hook(findings[0]); err != nil {
		t.Fatal(err)
	}

	// The row must be on disk before the run finishes.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("expected header + 1 row on disk, got %d lines", got)
	}

	if err := hook(findings[1]); err != nil {
		t.Fatal(err)
	}
	if err := lw.Close(); err != nil {
		t.Fatal(err)
	}

	records, err := csv.NewReader(strings.NewReader(readFile(t, path))).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Errorf("expected header + 2 rows, got %d records", len(records))
	}
}

func TestWriteReportsAllFormats(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "findings")

	paths, err := WriteReports(sampleFindings(), prefix, FormatAll)
	if err != nil {
		t.Fatal(err)
	}

	if len(paths) != 3 {
		t.Fatalf("expected 3 report files, got %d", len(paths))
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			t.Errorf("missing report file %s: %v", p, err)
			continue
		}
		if info.Size() == 0 {
			t.Errorf("report file %s is empty", p)
		}
	}
}

func TestWriteReportsSingleFormat(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "findings")

	paths, err := WriteReports(sampleFindings(), prefix, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 report file, got %d", len(paths))
	}
	if !strings.HasSuffix(paths[0], ".json") {
		t.Errorf("path = %q, want .json suffix", paths[0])
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"csv", "json", "txt", "table", "all"} {
		if _, err := ParseFormat(valid); err != nil {
			t.Errorf("ParseFormat(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
