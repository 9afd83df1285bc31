package github

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/model"
)

// ListMergedPulls lists pull requests merged within the last daysBack
// days, newest-updated first, up to maxPRs.
//
// Early-stop policy: results are ordered by update time, not merge time,
// so the scan stops at the first PR whose merge time falls before the
// cutoff. A PR merged inside the window but whose latest update predates
// older-merged, newer-updated PRs can be missed; that approximation is
// deliberate and keeps the scan cheap.
func (c *Client) ListMergedPulls(ctx context.Context, owner, repo string, daysBack, maxPRs int) ([]model.PullRequest, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack)

	fetch := func(page int) ([]model.PullRequest, error) {
		var prs []*github.PullRequest
		err := c.withRetry(ctx, "list pull requests", func() (*github.Response, error) {
			var resp *github.Response
			var ferr error
			prs, resp, ferr = c.gh.PullRequests.List(ctx, owner, repo, &github.PullRequestListOptions{
				State:     "closed",
				Sort:      "updated",
				Direction: "desc",
				ListOptions: github.ListOptions{
					PerPage: resultsPerPage,
					Page:    page,
				},
			})
			return resp, ferr
		})
		if err != nil {
			return nil, err
		}
		out := make([]model.PullRequest, 0, len(prs))
		for _, pr := range prs {
			out = append(out, convertPull(pr))
		}
		return out, nil
	}

	pause := func() error {
		return c.sleep(ctx, pullPagePause)
	}

	pulls, err := collectMergedPulls(fetch, pause, cutoff, maxPRs)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
			log.Debug("pull listing unavailable", "repo", owner+"/"+repo, "error", err)
			return pulls, nil
		}
		return pulls, err
	}
	return pulls, nil
}

// collectMergedPulls drives reverse-chronological pagination until
// maxPRs is reached, a short page is returned, or the early-stop policy
// fires. Split out from the API call so the termination behavior is
// testable against synthetic pages.
func collectMergedPulls(fetch func(page int) ([]model.PullRequest, error), pause func() error, cutoff time.Time, maxPRs int) ([]model.PullRequest, error) {
	var all []model.PullRequest

	for page := 1; len(all) < maxPRs; page++ {
		prs, err := fetch(page)
		if err != nil {
			return all, err
		}
		if len(prs) == 0 {
			break
		}

		kept, stop := filterMergedSince(prs, cutoff)
		all = append(all, kept...)

		if stop || len(prs) < resultsPerPage {
			break
		}
		if err := pause(); err != nil {
			return all, err
		}
	}

	if len(all) > maxPRs {
		all = all[:maxPRs]
	}
	return all, nil
}

// filterMergedSince retains PRs merged on or after the cutoff. It stops
// at the first PR merged strictly before the cutoff and reports that the
// caller should not fetch further pages. Unmerged (closed-not-merged)
// PRs are skipped without stopping the scan.
func filterMergedSince(prs []model.PullRequest, cutoff time.Time) (kept []model.PullRequest, stop bool) {
	for _, pr := range prs {
		if pr.MergedAt == nil {
			continue
		}
		if pr.MergedAt.Before(cutoff) {
			return kept, true
		}
		kept = append(kept, pr)
	}
	return kept, false
}

// convertPull maps an API pull request onto the crawler's record.
func convertPull(pr *github.PullRequest) model.PullRequest {
	p := model.PullRequest{
		Number:  pr.GetNumber(),
		Title:   strings.TrimSpace(pr.GetTitle()),
		HTMLURL: pr.GetHTMLURL(),
		State:   pr.GetState(),
	}
	if ts := pr.MergedAt; ts != nil {
		t := ts.Time
		p.MergedAt = &t
	}
	return p
}
