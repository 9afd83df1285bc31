package pipeline

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/hal/testhound/internal/cache"
	"github.com/hal/testhound/internal/github"
	"github.com/hal/testhound/internal/model"
)

// fakeForge serves canned responses and records which operations ran
// against which repositories.
type fakeForge struct {
	repos map[string]fakeRepo

	searched       []github.SearchOptions
	suiteProbes    []string
	pullListings   []string
	fileListings   []string
	quotaChecks    int
	searchResponse []model.Repo
}

type fakeRepo struct {
	hasSuite bool
	pulls    []model.PullRequest
	files    map[int][]model.FileChange
}

func (f *fakeForge) SearchRepos(_ context.Context, opts github.SearchOptions) ([]model.Repo, error) {
	f.searched = append(f.searched, opts)
	return f.searchResponse, nil
}

func (f *fakeForge) ListMergedPulls(_ context.Context, owner, repo string, _, _ int) ([]model.PullRequest, error) {
	full := owner + "/" + repo
	f.pullListings = append(f.pullListings, full)
	return f.repos[full].pulls, nil
}

func (f *fakeForge) ListPullFiles(_ context.Context, owner, repo string, number int) ([]model.FileChange, error) {
	full := owner + "/" + repo
	f.fileListings = append(f.fileListings, full)
	return f.repos[full].files[number], nil
}

func (f *fakeForge) HasTestSuite(_ context.Context, owner, repo string) bool {
	full := owner + "/" + repo
	f.suiteProbes = append(f.suiteProbes, full)
	return f.repos[full].hasSuite
}

func (f *fakeForge) WaitIfLow(context.Context) error {
	f.quotaChecks++
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func newTestPipeline(t *testing.T, forge Forge, opts Options) (*Pipeline, *cache.Cache) {
	t.Helper()
	c := cache.New(filepath.Join(t.TempDir(), "cache.json"))
	p := New(forge, c, opts)
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p, c
}

// qualifyingFiles is a delta list both classifier variants accept.
func qualifyingFiles() []model.FileChange {
	return []model.FileChange{
		{Path: "app/foo.py", Status: model.StatusModified, Additions: 10, Changes: 10},
		{Path: "tests/test_foo.py", Status: model.StatusAdded, Additions: 21, Changes: 21},
	}
}

func mergedRecently() *time.Time {
	t := time.Now().Add(-24 * time.Hour)
	return &t
}

func TestOversizedRepoSkipsEnumeration(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/huge", SizeKB: 150000},
		},
		repos: map[string]fakeRepo{
			"octo/huge": {hasSuite: true},
		},
	}
	p, c := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	findings, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(findings) != 0 {
		t.Errorf("findings = %d, want 0", len(findings))
	}
	if contains(forge.pullListings, "octo/huge") {
		t.Error("oversized repo must not reach PR enumeration")
	}
	// Short-circuit still records the outcome.
	entry, ok := c.Get("octo/huge")
	if !ok {
		t.Fatal("expected oversized repo to be cached")
	}
	if entry.PRsFound != 0 {
		t.Errorf("cached PRsFound = %d, want 0", entry.PRsFound)
	}
}

func TestRepoWithoutSuiteSkipsClassification(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/nosuite", SizeKB: 100},
		},
		repos: map[string]fakeRepo{
			"octo/nosuite": {
				hasSuite: false,
				pulls:    []model.PullRequest{{Number: 1, MergedAt: mergedRecently()}},
				files:    map[int][]model.FileChange{1: qualifyingFiles()},
			},
		},
	}
	p, c := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if contains(forge.fileListings, "octo/nosuite") {
		t.Error("suite-less repo must not reach the classifier")
	}
	if contains(forge.pullListings, "octo/nosuite") {
		t.Error("suite-less repo must not reach PR enumeration")
	}
	if entry, ok := c.Get("octo/nosuite"); !ok || entry.PRsFound != 0 {
		t.Errorf("expected cached zero-result entry, got %+v (present=%v)", entry, ok)
	}
}

func TestQualifyingPRBecomesFinding(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/widgets", SizeKB: 100, Stars: 120},
		},
		repos: map[string]fakeRepo{
			"octo/widgets": {
				hasSuite: true,
				pulls: []model.PullRequest{
					{Number: 7, Title: "add tests", MergedAt: mergedRecently()},
					{Number: 8, Title: "docs only", MergedAt: mergedRecently()},
				},
				files: map[int][]model.FileChange{
					7: qualifyingFiles(),
					8: {{Path: "README.md", Status: model.StatusModified, Additions: 2}},
				},
			},
		},
	}
	p, c := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	findings, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if len(findings) != 1 {
		t.Fatalf("findings = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.PR.Number != 7 {
		t.Errorf("finding PR = %d, want 7", f.PR.Number)
	}
	if f.Analysis.EstimatedNewTests != 3 {
		t.Errorf("EstimatedNewTests = %d, want 3", f.Analysis.EstimatedNewTests)
	}
	if entry, _ := c.Get("octo/widgets"); entry.PRsFound != 1 {
		t.Errorf("cached PRsFound = %d, want 1", entry.PRsFound)
	}
}

func TestEmptyFileListIsSkippedNotFailed(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/widgets", SizeKB: 100},
		},
		repos: map[string]fakeRepo{
			"octo/widgets": {
				hasSuite: true,
				pulls: []model.PullRequest{
					{Number: 1, MergedAt: mergedRecently()}, // delta fetch returns nothing
					{Number: 2, MergedAt: mergedRecently()},
				},
				files: map[int][]model.FileChange{
					2: qualifyingFiles(),
				},
			},
		},
	}
	p, _ := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	findings, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 || findings[0].PR.Number != 2 {
		t.Errorf("findings = %+v, want only PR 2", findings)
	}
}

func TestFreshCacheEntrySkipsRepo(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/cached", SizeKB: 100},
			{FullName: "octo/new", SizeKB: 100},
		},
		repos: map[string]fakeRepo{
			"octo/cached": {hasSuite: true},
			"octo/new":    {hasSuite: true},
		},
	}
	p, c := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10, SkipProcessed: true})
	c.MarkProcessed("octo/cached", 2, 100)

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if contains(forge.suiteProbes, "octo/cached") {
		t.Error("fresh cached repo must be skipped entirely")
	}
	if !contains(forge.suiteProbes, "octo/new") {
		t.Error("uncached repo must be processed")
	}
}

func TestTargetReachedDoesNotStopLoop(t *testing.T) {
	repos := []model.Repo{
		{FullName: "octo/a", SizeKB: 100},
		{FullName: "octo/b", SizeKB: 100},
		{FullName: "octo/c", SizeKB: 100},
	}
	fakes := map[string]fakeRepo{}
	for _, r := range repos {
		fakes[r.FullName] = fakeRepo{
			hasSuite: true,
			pulls:    []model.PullRequest{{Number: 1, MergedAt: mergedRecently()}},
			files:    map[int][]model.FileChange{1: qualifyingFiles()},
		}
	}
	forge := &fakeForge{searchResponse: repos, repos: fakes}
	p, _ := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10, TargetPRs: 1})

	findings, err := p.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	// Target of 1 was reached on the first repo; the other two are
	// still processed and the final count over-collects.
	if len(findings) != 3 {
		t.Errorf("findings = %d, want 3 (run continues past target)", len(findings))
	}
	if len(forge.pullListings) != 3 {
		t.Errorf("pullListings = %d, want 3", len(forge.pullListings))
	}
}

func TestQuotaCheckedPeriodically(t *testing.T) {
	var repos []model.Repo
	fakes := map[string]fakeRepo{}
	for i := 0; i < 120; i++ {
		name := "octo/repo" + string(rune('a'+i%26)) + string(rune('0'+i/26))
		repos = append(repos, model.Repo{FullName: name, SizeKB: 100})
		fakes[name] = fakeRepo{hasSuite: false}
	}
	forge := &fakeForge{searchResponse: repos, repos: fakes}
	p, _ := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 200})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	// One check at repo 50 and one at repo 100.
	if forge.quotaChecks != 2 {
		t.Errorf("quotaChecks = %d, want 2", forge.quotaChecks)
	}
}

func TestHooksObserveAppendsInOrder(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/widgets", SizeKB: 100},
		},
		repos: map[string]fakeRepo{
			"octo/widgets": {
				hasSuite: true,
				pulls: []model.PullRequest{
					{Number: 1, MergedAt: mergedRecently()},
					{Number: 2, MergedAt: mergedRecently()},
				},
				files: map[int][]model.FileChange{
					1: qualifyingFiles(),
					2: qualifyingFiles(),
				},
			},
		},
	}
	p, _ := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	var seen []int
	p.AddHook(func(f Finding) error {
		seen = append(seen, f.PR.Number)
		return nil
	})

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("hook saw %v, want [1 2]", seen)
	}
}

func TestCanceledRunFlushesCacheAndReturnsInterrupted(t *testing.T) {
	forge := &fakeForge{
		searchResponse: []model.Repo{
			{FullName: "octo/a", SizeKB: 100},
			{FullName: "octo/b", SizeKB: 100},
		},
		repos: map[string]fakeRepo{
			"octo/a": {hasSuite: false},
			"octo/b": {hasSuite: false},
		},
	}
	p, c := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10})

	ctx, cancel := context.WithCancel(context.Background())
	processed := 0
	p.sleep = func(context.Context, time.Duration) error {
		processed++
		if processed == 1 {
			cancel()
		}
		return nil
	}

	_, err := p.Run(ctx)
	if err != ErrInterrupted {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}

	// The first repo's outcome must have been flushed to disk.
	reloaded := cache.New(c.Path())
	reloaded.Load()
	if _, ok := reloaded.Get("octo/a"); !ok {
		t.Error("expected interrupted run to flush processed entries")
	}
}

func TestMinimalHeuristicAcceptsWithoutNewTestEstimate(t *testing.T) {
	// A PR touching an existing test file without adding test cases:
	// minimal qualifies, enhanced does not.
	files := []model.FileChange{
		{Path: "app/foo.py", Status: model.StatusModified, Additions: 4, Changes: 4},
		{Path: "tests/test_foo.py", Status: model.StatusModified, Additions: 1, Changes: 1,
			Patch: "@@ -1 +1,2 @@\n def test_existing():\n+    assert True\n"},
	}
	mk := func(h Heuristic) int {
		forge := &fakeForge{
			searchResponse: []model.Repo{{FullName: "octo/widgets", SizeKB: 100}},
			repos: map[string]fakeRepo{
				"octo/widgets": {
					hasSuite: true,
					pulls:    []model.PullRequest{{Number: 1, MergedAt: mergedRecently()}},
					files:    map[int][]model.FileChange{1: files},
				},
			},
		}
		p, _ := newTestPipeline(t, forge, Options{MaxSizeMB: 100, MaxRepos: 10, Heuristic: h})
		findings, err := p.Run(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		return len(findings)
	}

	if got := mk(HeuristicMinimal); got != 1 {
		t.Errorf("minimal findings = %d, want 1", got)
	}
	if got := mk(HeuristicEnhanced); got != 0 {
		t.Errorf("enhanced findings = %d, want 0", got)
	}
}
