package github

import (
	"context"
	"strings"

	"github.com/google/go-github/v57/github"

	"github.com/hal/testhound/internal/log"
)

// Root-listing entries that indicate a repository carries test tooling:
// conventional test directories, runner config files, the CI workflow
// directory.
var suiteMarkers = map[string]bool{
	"tests":       true,
	"test":        true,
	"testing":     true,
	"pytest.ini":  true,
	"tox.ini":     true,
	"setup.cfg":   true,
	"conftest.py": true,
	".github":     true,
}

// HasTestSuite probes the repository's root listing for test-tooling
// markers. A probe that cannot fetch or decode the listing reports true:
// failing open avoids discarding repositories we merely could not
// inspect.
func (c *Client) HasTestSuite(ctx context.Context, owner, repo string) bool {
	var entries []*github.RepositoryContent
	err := c.withRetry(ctx, "list root contents", func() (*github.Response, error) {
		var resp *github.Response
		var ferr error
		_, entries, resp, ferr = c.gh.Repositories.GetContents(ctx, owner, repo, "", nil)
		return resp, ferr
	})
	if err != nil {
		log.Debug("suite probe failed, assuming suite exists",
			"repo", owner+"/"+repo, "error", err)
		return true
	}
	if entries == nil {
		// Root resolved to a single file, not a directory listing.
		return false
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.GetName())
	}
	return hasSuiteMarker(names)
}

// hasSuiteMarker reports whether any root entry names known test
// tooling or starts with "test_".
func hasSuiteMarker(names []string) bool {
	for _, name := range names {
		if suiteMarkers[strings.ToLower(name)] {
			return true
		}
		if strings.HasPrefix(name, "test_") {
			return true
		}
	}
	return false
}
