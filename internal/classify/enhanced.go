package classify

import (
	"strings"

	"github.com/hal/testhound/internal/model"
)

// Patterns matched against added diff lines to spot new test definitions.
// Weights reflect how many test cases each definition typically introduces:
// a test class usually carries several methods, a parametrize marker
// multiplies an existing function.
const (
	testFuncWeight   = 1.0
	testClassWeight  = 3.0
	testMarkerWeight = 0.5

	// Added test files estimate one test case per ~7 added lines, with a
	// floor of one, once the file is big enough to plausibly hold a test.
	linesPerTestCase  = 7
	minAddedLinesFile = 5
)

// ClassifyEnhanced buckets files like Classify and additionally estimates
// how many new test cases the pull request introduces, by file status:
// newly added test files estimate from their added-line count, modified
// test files from test-defining lines in their diff text.
func ClassifyEnhanced(files []model.FileChange) Result {
	r := Classify(files)

	estimate := 0.0
	for _, f := range files {
		if !IsTestFile(f.Path) {
			continue
		}
		switch f.Status {
		case model.StatusAdded:
			if f.Additions >= minAddedLinesFile {
				n := f.Additions / linesPerTestCase
				if n < 1 {
					n = 1
				}
				estimate += float64(n)
			}
		case model.StatusModified:
			estimate += estimateFromPatch(f.Patch)
		}
	}

	r.EstimatedNewTests = int(estimate)
	return r
}

// estimateFromPatch scans added diff lines for test definitions.
func estimateFromPatch(patch string) float64 {
	if patch == "" {
		return 0
	}

	total := 0.0
	for _, line := range strings.Split(patch, "\n") {
		if !strings.HasPrefix(line, "+") {
			continue
		}
		added := strings.TrimSpace(strings.TrimPrefix(line, "+"))
		switch {
		case strings.HasPrefix(added, "def test_"):
			total += testFuncWeight
		case strings.HasPrefix(added, "async def test_"):
			total += testFuncWeight
		case strings.HasPrefix(added, "class Test"):
			total += testClassWeight
		case strings.HasPrefix(added, "@pytest.mark"):
			total += testMarkerWeight
		}
	}
	return total
}
