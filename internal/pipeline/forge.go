package pipeline

import (
	"context"

	"github.com/hal/testhound/internal/github"
	"github.com/hal/testhound/internal/model"
)

// Forge is the surface of the forge client the pipeline consumes.
// Narrowing it to an interface keeps the orchestrator testable against
// synthetic responses.
type Forge interface {
	SearchRepos(ctx context.Context, opts github.SearchOptions) ([]model.Repo, error)
	ListMergedPulls(ctx context.Context, owner, repo string, daysBack, maxPRs int) ([]model.PullRequest, error)
	ListPullFiles(ctx context.Context, owner, repo string, number int) ([]model.FileChange, error)
	HasTestSuite(ctx context.Context, owner, repo string) bool
	WaitIfLow(ctx context.Context) error
}

// Ensure the real client satisfies the interface.
var _ Forge = (*github.Client)(nil)
