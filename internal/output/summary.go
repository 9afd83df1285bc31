package output

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/hal/testhound/internal/pipeline"
)

// Summary aggregates run-level statistics over the findings.
type Summary struct {
	TotalPRs          int
	UniqueRepos       int
	TotalTestFiles    int
	TotalCodeFiles    int
	TotalNewTestFiles int
	EstimatedNewTests int
	TotalChanges      int
	TotalAdditions    int
	TotalDeletions    int
	AvgRepoSizeMB     float64
	TopRepos          []RepoCount
}

// RepoCount pairs a repository with its qualifying-PR count.
type RepoCount struct {
	FullName string
	Count    int
}

// topReposShown caps the leaderboard in the rendered summary.
const topReposShown = 10

// Summarize computes statistics over the findings.
func Summarize(findings []pipeline.Finding) Summary {
	s := Summary{TotalPRs: len(findings)}
	if len(findings) == 0 {
		return s
	}

	perRepo := map[string]int{}
	sizeSum := 0
	for _, f := range findings {
		perRepo[f.Repo.FullName]++
		sizeSum += f.Repo.SizeKB
		s.TotalTestFiles += len(f.Analysis.TestFiles)
		s.TotalCodeFiles += len(f.Analysis.CodeFiles)
		s.TotalNewTestFiles += len(f.Analysis.NewTestFiles)
		s.EstimatedNewTests += f.Analysis.EstimatedNewTests
		s.TotalChanges += f.Analysis.TotalChanges
		s.TotalAdditions += f.Analysis.TotalAdditions
		s.TotalDeletions += f.Analysis.TotalDeletions
	}

	s.UniqueRepos = len(perRepo)
	s.AvgRepoSizeMB = float64(sizeSum) / float64(len(findings)) / 1024

	for name, count := range perRepo {
		s.TopRepos = append(s.TopRepos, RepoCount{FullName: name, Count: count})
	}
	sort.Slice(s.TopRepos, func(i, j int) bool {
		if s.TopRepos[i].Count != s.TopRepos[j].Count {
			return s.TopRepos[i].Count > s.TopRepos[j].Count
		}
		return s.TopRepos[i].FullName < s.TopRepos[j].FullName
	})
	if len(s.TopRepos) > topReposShown {
		s.TopRepos = s.TopRepos[:topReposShown]
	}

	return s
}

// RenderSummary prints the summary statistics.
func RenderSummary(s Summary, w io.Writer) {
	heading := color.New(color.Bold, color.FgCyan)
	heading.Fprintln(w, "SUMMARY")

	if s.TotalPRs == 0 {
		fmt.Fprintln(w, "No test-adding pull requests found.")
		return
	}

	fmt.Fprintf(w, "Total PRs with test changes: %d\n", s.TotalPRs)
	fmt.Fprintf(w, "Unique repositories: %d\n", s.UniqueRepos)
	fmt.Fprintf(w, "Average repository size: %.2f MB\n", s.AvgRepoSizeMB)
	fmt.Fprintf(w, "Test files modified: %d\n", s.TotalTestFiles)
	fmt.Fprintf(w, "Code files modified: %d\n", s.TotalCodeFiles)
	fmt.Fprintf(w, "New test files added: %d\n", s.TotalNewTestFiles)
	if s.EstimatedNewTests > 0 {
		fmt.Fprintf(w, "Estimated new test cases: %d\n", s.EstimatedNewTests)
	}
	fmt.Fprintf(w, "Total line changes: %d (+%d/-%d)\n",
		s.TotalChanges, s.TotalAdditions, s.TotalDeletions)
	fmt.Fprintf(w, "Average lines per PR: %.1f\n",
		float64(s.TotalChanges)/float64(s.TotalPRs))

	if len(s.TopRepos) > 0 {
		fmt.Fprintln(w)
		heading.Fprintln(w, "TOP REPOSITORIES BY QUALIFYING PR COUNT")
		for i, rc := range s.TopRepos {
			fmt.Fprintf(w, "%2d. %s: %d PRs\n", i+1, rc.FullName, rc.Count)
		}
	}
}
