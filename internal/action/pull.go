// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"time"

	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// Pull fast-forwards existing checkouts. The gate skips missing and dirty
// ones; diverged branches proceed and fail at git with --ff-only, so the
// result carries git's own diagnostics.
type Pull struct {
	deps Deps
}

func NewPull(deps Deps) *Pull { return &Pull{deps: deps} }

func (p *Pull) Name() string             { return "pull" }
func (p *Pull) Synopsis() string         { return "fast-forward existing checkouts" }
func (p *Pull) Kind() model.ActionKind   { return model.KindPull }
func (p *Pull) SafeParallel() bool       { return true }
func (p *Pull) RequiresToken() bool      { return false }
func (p *Pull) NeedsRemoteRefresh() bool { return true }
func (p *Pull) Timeout() time.Duration   { return 2 * time.Minute }

func (p *Pull) Apply(ctx context.Context, req Request) model.ActionResult {
	if req.DryRun {
		return skipped(req.Repo, "would run git pull --ff-only")
	}
	if err := gitx.Pull(ctx, p.deps.git(), req.Path); err != nil {
		return failed(req.Repo, "pull failed", err)
	}
	if req.Status == model.StatusInSync {
		return success(req.Repo, "already up to date")
	}
	return success(req.Repo, "pulled")
}
