package github

import (
	"context"
	"errors"

	"github.com/google/go-github/v57/github"

	"github.com/hal/testhound/internal/log"
	"github.com/hal/testhound/internal/model"
)

// ListPullFiles returns the file-level deltas of a pull request in the
// order the forge reports them. An unavailable PR yields an empty list,
// which callers treat as "skip", not as a failure.
func (c *Client) ListPullFiles(ctx context.Context, owner, repo string, number int) ([]model.FileChange, error) {
	var all []model.FileChange

	page := 1
	for {
		var files []*github.CommitFile
		var resp *github.Response
		err := c.withRetry(ctx, "list pull request files", func() (*github.Response, error) {
			var ferr error
			files, resp, ferr = c.gh.PullRequests.ListFiles(ctx, owner, repo, number, &github.ListOptions{
				PerPage: resultsPerPage,
				Page:    page,
			})
			return resp, ferr
		})
		if err != nil {
			if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
				log.Debug("pull request files unavailable",
					"repo", owner+"/"+repo, "pr", number, "error", err)
				return all, nil
			}
			return all, err
		}

		for _, f := range files {
			all = append(all, model.FileChange{
				Path:      f.GetFilename(),
				Status:    model.FileStatus(f.GetStatus()),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
				Patch:     f.GetPatch(),
			})
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		page = resp.NextPage
	}

	return all, nil
}
