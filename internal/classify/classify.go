// Package classify decides whether a pull request introduces test code
// alongside production code, based on file paths and diff text.
package classify

import (
	"strings"

	"github.com/hal/testhound/internal/model"
)

// testFilePatterns match test files by path substring, case-insensitively.
var testFilePatterns = []string{
	"test_",
	"_test.py",
	"/test/",
	"/tests/",
	"conftest.py",
	"pytest",
	"unittest",
}

// Result is the classifier verdict for a single pull request.
type Result struct {
	HasTestChanges bool `json:"hasTestChanges"`
	HasCodeChanges bool `json:"hasCodeChanges"`

	TestFiles    []string `json:"testFiles"`
	CodeFiles    []string `json:"codeFiles"`
	NewTestFiles []string `json:"newTestFiles"`

	TotalAdditions int `json:"totalAdditions"`
	TotalDeletions int `json:"totalDeletions"`
	TotalChanges   int `json:"totalChanges"`

	TestFileChanges int `json:"testFileChanges"`
	CodeFileChanges int `json:"codeFileChanges"`

	// EstimatedNewTests is only populated by the enhanced classifier.
	EstimatedNewTests int `json:"estimatedNewTests,omitempty"`
}

// IsTestFile reports whether the path matches any test-file pattern.
func IsTestFile(path string) bool {
	lower := strings.ToLower(path)
	for _, p := range testFilePatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// IsCodeFile reports whether the path is a production source file.
// Test files and code files are mutually exclusive buckets.
func IsCodeFile(path string) bool {
	return strings.HasSuffix(path, ".py") && !IsTestFile(path)
}

// Classify buckets the file deltas of a pull request into test and code
// files and aggregates line-change totals. It is a pure function: the
// same delta list always yields the same Result.
func Classify(files []model.FileChange) Result {
	var r Result

	for _, f := range files {
		r.TotalAdditions += f.Additions
		r.TotalDeletions += f.Deletions
		r.TotalChanges += f.Changes

		switch {
		case IsTestFile(f.Path):
			r.HasTestChanges = true
			r.TestFiles = append(r.TestFiles, f.Path)
			r.TestFileChanges += f.Changes
			if f.Status == model.StatusAdded {
				r.NewTestFiles = append(r.NewTestFiles, f.Path)
			}
		case IsCodeFile(f.Path):
			r.HasCodeChanges = true
			r.CodeFiles = append(r.CodeFiles, f.Path)
			r.CodeFileChanges += f.Changes
		}
	}

	return r
}

// Qualifies reports whether a minimally classified pull request counts as
// test-adding: at least one test file and at least one code file.
func (r Result) Qualifies() bool {
	return r.HasTestChanges && r.HasCodeChanges
}

// QualifiesEnhanced additionally requires that the enhanced heuristic
// estimated at least one newly introduced test case.
func (r Result) QualifiesEnhanced() bool {
	return r.HasTestChanges && r.HasCodeChanges && r.EstimatedNewTests > 0
}
