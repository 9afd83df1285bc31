package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/hal/testhound/internal/pipeline"
)

// JSONReport wraps the findings with run-level metadata.
type JSONReport struct {
	GeneratedAt time.Time          `json:"generatedAt"`
	TotalPRs    int                `json:"totalPrs"`
	UniqueRepos int                `json:"uniqueRepos"`
	Data        []pipeline.Finding `json:"data"`
}

// JSONWriter renders findings as a single JSON document.
type JSONWriter struct{}

// Write renders the full finding list.
func (jw *JSONWriter) Write(findings []pipeline.Finding, w io.Writer) error {
	report := JSONReport{
		GeneratedAt: time.Now(),
		TotalPRs:    len(findings),
		UniqueRepos: countUniqueRepos(findings),
		Data:        findings,
	}
	if report.Data == nil {
		report.Data = []pipeline.Finding{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// countUniqueRepos counts distinct repositories across findings.
func countUniqueRepos(findings []pipeline.Finding) int {
	seen := make(map[string]bool, len(findings))
	for _, f := range findings {
		seen[f.Repo.FullName] = true
	}
	return len(seen)
}
