package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/hal/testhound/internal/format"
	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/model"
)

// The search API truncates any single query to this result window:
// resultsPerPage items per page, maxSearchPages pages.
const (
	resultsPerPage    = 100
	maxSearchPages    = 10
	searchWindowLimit = resultsPerPage * maxSearchPages

	// maxDateSplits caps how many sub-ranges a query's date range is
	// partitioned into when more results than one window are requested.
	maxDateSplits = 10
)

// SearchOptions configures repository discovery.
type SearchOptions struct {
	Language  string // defaults to "python"
	MinStars  int
	DaysBack  int
	MaxRepos  int
	MaxSizeKB int
}

// dateRange is a half-open [Start, End] window for a pushed: filter.
type dateRange struct {
	Start time.Time
	End   time.Time
}

// SearchRepos discovers repositories matching the language, popularity
// and recency filters. The forge caps any single query at 1000 results,
// so when more are requested the date range is partitioned into up to
// ten sub-ranges queried independently. Candidates over MaxSizeKB are
// dropped after fetching; the final list is truncated to MaxRepos.
func (c *Client) SearchRepos(ctx context.Context, opts SearchOptions) ([]model.Repo, error) {
	lang := opts.Language
	if lang == "" {
		lang = "python"
	}

	now := time.Now()
	ranges := splitDateRanges(now, opts.DaysBack, opts.MaxRepos)
	log.Info("searching repositories",
		"language", lang, "minStars", opts.MinStars, "ranges", len(ranges))

	var all []model.Repo
	for i, dr := range ranges {
		if len(all) >= opts.MaxRepos {
			break
		}
		if err := c.searchRange(ctx, lang, dr, opts, &all); err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Warn("search range failed, moving on",
				"start", dr.Start.Format("2006-01-02"), "end", dr.End.Format("2006-01-02"), "error", err)
		}
		if i < len(ranges)-1 {
			if err := c.sleep(ctx, searchRangePause); err != nil {
				return all, err
			}
		}
	}

	if len(all) > opts.MaxRepos {
		all = all[:opts.MaxRepos]
	}
	log.Info("search complete", "repos", len(all))
	return all, nil
}

// searchRange pages through one date sub-range, appending size-filtered
// candidates to out until the range or the global budget is exhausted.
func (c *Client) searchRange(ctx context.Context, lang string, dr dateRange, opts SearchOptions, out *[]model.Repo) error {
	query := fmt.Sprintf("language:%s stars:>=%d pushed:%s..%s",
		lang, opts.MinStars,
		dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
	log.Debug("searching range", "query", query)

	page := 1
	for len(*out) < opts.MaxRepos {
		var result *github.RepositoriesSearchResult
		err := c.withRetry(ctx, "search repositories", func() (*github.Response, error) {
			var resp *github.Response
			var ferr error
			result, resp, ferr = c.gh.Search.Repositories(ctx, query, &github.SearchOptions{
				Sort:  "updated",
				Order: "desc",
				ListOptions: github.ListOptions{
					PerPage: resultsPerPage,
					Page:    page,
				},
			})
			return resp, ferr
		})
		if err != nil {
			return err
		}

		items := result.Repositories
		if len(items) == 0 {
			return nil
		}

		for _, repo := range items {
			r := convertRepo(repo)
			if opts.MaxSizeKB > 0 && r.SizeKB > opts.MaxSizeKB {
				log.Debug("skipping oversized repo",
					"repo", r.FullName, "size", format.SizeMB(r.SizeKB))
				continue
			}
			*out = append(*out, r)
			if len(*out) >= opts.MaxRepos {
				return nil
			}
		}

		page++
		if len(items) < resultsPerPage || page > maxSearchPages {
			return nil
		}
		if err := c.sleep(ctx, searchPagePause); err != nil {
			return err
		}
	}
	return nil
}

// splitDateRanges partitions the lookback window. A request within one
// search window uses the full range; larger requests split into up to
// maxDateSplits sub-ranges, newest first, so each sub-range gets its own
// result window.
func splitDateRanges(end time.Time, daysBack, maxRepos int) []dateRange {
	start := end.AddDate(0, 0, -daysBack)
	if maxRepos <= searchWindowLimit {
		return []dateRange{{Start: start, End: end}}
	}

	numSplits := maxRepos/searchWindowLimit + 1
	if numSplits > maxDateSplits {
		numSplits = maxDateSplits
	}
	daysPer := daysBack / numSplits
	if daysPer < 1 {
		daysPer = 1
	}

	var ranges []dateRange
	for i := 0; i < numSplits; i++ {
		rangeEnd := end.AddDate(0, 0, -i*daysPer)
		rangeStart := rangeEnd.AddDate(0, 0, -daysPer)
		if rangeStart.Before(start) {
			rangeStart = start
		}
		if !rangeEnd.After(start) {
			break
		}
		ranges = append(ranges, dateRange{Start: rangeStart, End: rangeEnd})
	}
	return ranges
}

// convertRepo maps a search result onto the crawler's repo record.
func convertRepo(r *github.Repository) model.Repo {
	return model.Repo{
		FullName:    r.GetFullName(),
		Stars:       r.GetStargazersCount(),
		SizeKB:      r.GetSize(),
		Description: r.GetDescription(),
		HTMLURL:     r.GetHTMLURL(),
	}
}
