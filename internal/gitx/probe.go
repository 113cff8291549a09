package gitx

import (
	"context"

	"github.com/skaphos/gitfleet/internal/model"
)

// Probe adapts the package-level git helpers to the engine's probe
// contract, carrying the Runner used for every git invocation.
type Probe struct {
	// Runner executes git. Nil means the default GitRunner.
	Runner Runner
}

func (p *Probe) runner() Runner {
	if p.Runner != nil {
		return p.Runner
	}
	return &GitRunner{}
}

// Inspect returns the local state of the checkout at path.
func (p *Probe) Inspect(ctx context.Context, path string) (model.LocalState, error) {
	return Inspect(ctx, p.runner(), path)
}

// Refresh updates remote tracking refs for the checkout at path.
func (p *Probe) Refresh(ctx context.Context, path string) error {
	return Fetch(ctx, p.runner(), path)
}
