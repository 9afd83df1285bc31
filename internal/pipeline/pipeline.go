// Package pipeline drives the crawl: repository discovery, cache
// skipping, merged-PR enumeration, classification, and result
// accumulation.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hal/testhound/internal/cache"
	"github.com/hal/testhound/internal/classify"
	"github.com/hal/testhound/internal/format"
	"github.com/hal/testhound/internal/github"
	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/model"
)

// ErrInterrupted is returned when the run was stopped by cancellation.
// The cache is flushed and partial results are kept before it surfaces.
var ErrInterrupted = errors.New("run interrupted")

const (
	// cacheSaveInterval is how many repositories are processed between
	// periodic cache flushes.
	cacheSaveInterval = 10

	// quotaCheckInterval is how many repositories are processed between
	// quota pre-flight checks.
	quotaCheckInterval = 50

	// maxPRsPerRepo bounds enumeration within one repository.
	maxPRsPerRepo = 200

	// repoPause is the pacing delay between repositories.
	repoPause = 200 * time.Millisecond
)

// Heuristic selects the classifier variant.
type Heuristic string

const (
	HeuristicMinimal  Heuristic = "minimal"
	HeuristicEnhanced Heuristic = "enhanced"
)

// Options configures a crawl.
type Options struct {
	MinStars      int
	DaysBack      int
	MaxRepos      int
	TargetPRs     int
	MaxSizeMB     int
	SkipProcessed bool
	Heuristic     Heuristic
}

// Finding ties a qualifying pull request to its repository and verdict.
type Finding struct {
	Repo     model.Repo        `json:"repository"`
	PR       model.PullRequest `json:"pullRequest"`
	Analysis classify.Result   `json:"analysis"`
}

// Hook observes each finding as it is appended, in append order. Used by
// live report writers; hook errors are logged, never fatal.
type Hook func(Finding) error

// Pipeline owns the cache and the result accumulator. Single-threaded:
// only the Run flow mutates either.
type Pipeline struct {
	forge Forge
	cache *cache.Cache
	opts  Options

	findings []Finding
	hooks    []Hook

	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a pipeline over the given forge and cache.
func New(forge Forge, c *cache.Cache, opts Options) *Pipeline {
	if opts.Heuristic == "" {
		opts.Heuristic = HeuristicEnhanced
	}
	return &Pipeline{
		forge: forge,
		cache: c,
		opts:  opts,
		sleep: sleepContext,
	}
}

// AddHook registers a per-append observer.
func (p *Pipeline) AddHook(h Hook) {
	p.hooks = append(p.hooks, h)
}

// Findings returns the accumulated results in append order.
func (p *Pipeline) Findings() []Finding {
	return p.findings
}

// Run crawls until every discovered repository has been processed or the
// context is canceled. The cache is flushed before any return path,
// including interruption.
func (p *Pipeline) Run(ctx context.Context) ([]Finding, error) {
	maxSizeKB := format.MBToKB(p.opts.MaxSizeMB)

	repos, err := p.forge.SearchRepos(ctx, github.SearchOptions{
		MinStars:  p.opts.MinStars,
		DaysBack:  p.opts.DaysBack,
		MaxRepos:  p.opts.MaxRepos,
		MaxSizeKB: maxSizeKB,
	})
	if ctx.Err() != nil {
		p.flush()
		return p.findings, ErrInterrupted
	}
	if err != nil {
		return p.findings, fmt.Errorf("repository search failed: %w", err)
	}
	log.Info("repositories discovered", "count", len(repos))

	if p.opts.SkipProcessed {
		kept := repos[:0]
		for _, r := range repos {
			if p.cache.IsFresh(r.FullName) {
				log.Debug("skipping recently processed repo", "repo", r.FullName)
				continue
			}
			kept = append(kept, r)
		}
		if skipped := len(repos) - len(kept); skipped > 0 {
			log.Info("skipped recently processed repositories", "skipped", skipped, "remaining", len(kept))
		}
		repos = kept
	}

	targetReached := false
	for i, repo := range repos {
		if ctx.Err() != nil {
			p.flush()
			return p.findings, ErrInterrupted
		}

		log.Progress("analyzing %d/%d: %s (%s) - %d qualifying PRs so far",
			i+1, len(repos), repo.FullName, format.SizeMB(repo.SizeKB), len(p.findings))

		found := p.processRepo(ctx, repo, maxSizeKB)
		p.cache.MarkProcessed(repo.FullName, found, repo.SizeKB)

		if (i+1)%cacheSaveInterval == 0 {
			p.flush()
		}
		if (i+1)%quotaCheckInterval == 0 {
			if err := p.forge.WaitIfLow(ctx); err != nil {
				p.flush()
				return p.findings, ErrInterrupted
			}
		}

		// Reaching the target does not stop the loop: the run keeps
		// processing every discovered repository and over-collects.
		if !targetReached && p.opts.TargetPRs > 0 && len(p.findings) >= p.opts.TargetPRs {
			targetReached = true
			log.Info("target reached, continuing through remaining repositories",
				"findings", len(p.findings), "target", p.opts.TargetPRs)
		}

		if err := p.sleep(ctx, repoPause); err != nil {
			p.flush()
			return p.findings, ErrInterrupted
		}
	}

	log.ProgressClear()
	p.flush()
	return p.findings, nil
}

// processRepo walks one repository through the per-repo states: size
// check, suite probe, enumeration, classification. It returns the count
// of qualifying PRs; every short-circuit returns zero and the caller
// still records the repository as processed.
func (p *Pipeline) processRepo(ctx context.Context, repo model.Repo, maxSizeKB int) int {
	owner, name, ok := splitFullName(repo.FullName)
	if !ok {
		log.Warn("malformed repository name", "repo", repo.FullName)
		return 0
	}

	if maxSizeKB > 0 && repo.SizeKB > maxSizeKB {
		log.Debug("repository too large", "repo", repo.FullName, "size", format.SizeMB(repo.SizeKB))
		return 0
	}

	if !p.forge.HasTestSuite(ctx, owner, name) {
		log.Debug("no test suite found", "repo", repo.FullName)
		return 0
	}

	pulls, err := p.forge.ListMergedPulls(ctx, owner, name, p.opts.DaysBack, maxPRsPerRepo)
	if err != nil {
		log.Warn("could not list merged PRs", "repo", repo.FullName, "error", err)
		return 0
	}
	if len(pulls) == 0 {
		log.Debug("no recently merged PRs", "repo", repo.FullName)
		return 0
	}

	found := 0
	for _, pr := range pulls {
		if ctx.Err() != nil {
			return found
		}

		files, err := p.forge.ListPullFiles(ctx, owner, name, pr.Number)
		if err != nil {
			log.Warn("could not fetch PR files",
				"repo", repo.FullName, "pr", pr.Number, "error", err)
			continue
		}
		if len(files) == 0 {
			continue
		}

		result, qualifies := p.classifyFiles(files)
		if !qualifies {
			continue
		}

		p.append(Finding{Repo: repo, PR: pr, Analysis: result})
		found++
	}

	if found > 0 {
		log.Info("found qualifying PRs", "repo", repo.FullName, "count", found)
	}
	return found
}

// classifyFiles applies the configured classifier variant.
func (p *Pipeline) classifyFiles(files []model.FileChange) (classify.Result, bool) {
	if p.opts.Heuristic == HeuristicMinimal {
		r := classify.Classify(files)
		return r, r.Qualifies()
	}
	r := classify.ClassifyEnhanced(files)
	return r, r.QualifiesEnhanced()
}

// append grows the accumulator and notifies live writers.
func (p *Pipeline) append(f Finding) {
	p.findings = append(p.findings, f)
	for _, h := range p.hooks {
		if err := h(f); err != nil {
			log.Warn("live writer failed", "repo", f.Repo.FullName, "pr", f.PR.Number, "error", err)
		}
	}
}

// flush persists the cache, logging rather than failing on error.
func (p *Pipeline) flush() {
	if err := p.cache.Save(); err != nil {
		log.Warn("could not save cache", "error", err)
	}
}

// splitFullName splits "owner/name" into its parts.
func splitFullName(fullName string) (owner, name string, ok bool) {
	owner, name, ok = strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// sleepContext sleeps for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
