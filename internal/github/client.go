// Package github wraps the GitHub REST API for the crawler: repository
// search, merged-PR listing, PR file deltas, test-suite probing, and
// rate-limit handling.
package github

import (
	"context"
	"os"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// Pacing delays between successive API requests. These keep the crawler
// under burst limits; correctness does not depend on them.
const (
	searchPagePause  = 500 * time.Millisecond
	searchRangePause = time.Second
	pullPagePause    = 200 * time.Millisecond
)

// Client wraps the GitHub API client.
type Client struct {
	gh *github.Client

	// sleep is swapped out in tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a client using a personal access token. An empty
// token falls back to the GITHUB_TOKEN environment variable; requests
// without any token run against the much smaller anonymous quota.
func NewClient(token string) *Client {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	httpClient := oauth2.NewClient(context.Background(), nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		gh:    github.NewClient(httpClient),
		sleep: sleepContext,
	}
}

// RawClient returns the underlying go-github client.
func (c *Client) RawClient() *github.Client {
	return c.gh
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
