package github

import (
	"context"
	"time"

	"github.com/hal/testhound/internal/log"
)

const (
	// quotaThreshold is the remaining-call count below which the crawler
	// waits for the quota window to reset.
	quotaThreshold = 10

	// quotaResetMargin pads the reported reset time to absorb clock skew
	// between us and the forge.
	quotaResetMargin = 10 * time.Second
)

// Quota describes the core API rate-limit budget.
type Quota struct {
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Quota fetches the current core rate-limit status. The rate-limit
// endpoint itself does not consume quota.
func (c *Client) Quota(ctx context.Context) (Quota, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return Quota{}, err
	}
	core := limits.GetCore()
	if core == nil {
		return Quota{}, nil
	}
	return Quota{
		Remaining: core.Remaining,
		Limit:     core.Limit,
		ResetAt:   core.Reset.Time,
	}, nil
}

// WaitIfLow checks the remaining quota and, when it has dropped below
// the threshold, sleeps until the reset time plus a safety margin. A
// failed check is logged and ignored: quota is advisory.
func (c *Client) WaitIfLow(ctx context.Context) error {
	q, err := c.Quota(ctx)
	if err != nil {
		log.Warn("could not check rate limit", "error", err)
		return nil
	}

	log.Debug("rate limit status", "remaining", q.Remaining, "limit", q.Limit)
	if q.Remaining >= quotaThreshold {
		return nil
	}

	wait := quotaWait(q.ResetAt, time.Now())
	log.Warn("rate limit low, waiting for reset",
		"remaining", q.Remaining, "wait", wait.Round(time.Second))
	return c.sleep(ctx, wait)
}

// quotaWait computes how long to sleep before the quota window resets.
func quotaWait(resetAt, now time.Time) time.Duration {
	wait := resetAt.Sub(now) + quotaResetMargin
	if wait < 0 {
		wait = 0
	}
	return wait
}
