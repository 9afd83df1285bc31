package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hal/testhound/config"
	"github.com/hal/testhound/internal/github"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display the current GitHub API core quota: remaining calls and reset time.`,
		RunE:  runRateLimitStatus,
	}
}

func runRateLimitStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := github.NewClient(cfg.GetGitHubToken())
	q, err := client.Quota(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get rate limit: %w", err)
	}

	resetIn := time.Until(q.ResetAt).Round(time.Second)
	if resetIn < 0 {
		resetIn = 0
	}
	fmt.Printf("Core API: %d/%d remaining (resets in %s)\n", q.Remaining, q.Limit, resetIn)
	return nil
}
