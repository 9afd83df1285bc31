package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"

	"github.com/hal/testhound/internal/log"
)

// Sentinel errors surfaced by the request policy. Callers treat both as
// "resource unavailable", not as run-ending failures.
var (
	// ErrNotFound means the resource does not exist or is invisible to
	// the token. Not retried.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means access was denied for a reason other than rate
	// limiting. Not retried.
	ErrForbidden = errors.New("access forbidden")
)

const (
	maxAttempts = 3

	// rateLimitCooldown is the fixed wait after a 403 rate-limit
	// response before retrying.
	rateLimitCooldown = 60 * time.Second

	// retryBaseDelay doubles on each failed attempt.
	retryBaseDelay = time.Second
)

// withRetry runs fn under the request policy: transport failures retry
// with exponential backoff, rate-limit responses cool down and retry,
// 404 and non-rate-limit 403 return immediately.
func (c *Client) withRetry(ctx context.Context, op string, fn func() (*github.Response, error)) error {
	delay := retryBaseDelay

	for attempt := 1; ; attempt++ {
		_, err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var rateErr *github.RateLimitError
		var abuseErr *github.AbuseRateLimitError
		if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
			log.Warn("rate limit exceeded, cooling down",
				"op", op, "wait", rateLimitCooldown, "attempt", attempt)
			if attempt >= maxAttempts {
				return fmt.Errorf("%s: rate limited after %d attempts: %w", op, maxAttempts, err)
			}
			if serr := c.sleep(ctx, rateLimitCooldown); serr != nil {
				return serr
			}
			continue
		}

		var errResp *github.ErrorResponse
		if errors.As(err, &errResp) && errResp.Response != nil {
			switch errResp.Response.StatusCode {
			case http.StatusNotFound:
				return ErrNotFound
			case http.StatusForbidden:
				log.Warn("access forbidden", "op", op)
				return ErrForbidden
			}
		}

		if attempt >= maxAttempts {
			return fmt.Errorf("%s failed after %d attempts: %w", op, maxAttempts, err)
		}
		log.Debug("request failed, backing off",
			"op", op, "attempt", attempt, "delay", delay, "error", err)
		if serr := c.sleep(ctx, delay); serr != nil {
			return serr
		}
		delay *= 2
	}
}
