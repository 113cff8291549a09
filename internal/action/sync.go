// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"errors"
	"time"

	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// Sync clones repositories missing locally and fast-forwards the rest in
// one pass. The gate skips dirty checkouts only; everything else either
// clones or pulls.
type Sync struct {
	deps Deps
}

func NewSync(deps Deps) *Sync { return &Sync{deps: deps} }

func (s *Sync) Name() string             { return "sync" }
func (s *Sync) Synopsis() string         { return "clone missing repositories and pull existing ones" }
func (s *Sync) Kind() model.ActionKind   { return model.KindSync }
func (s *Sync) SafeParallel() bool       { return true }
func (s *Sync) RequiresToken() bool      { return false }
func (s *Sync) NeedsRemoteRefresh() bool { return true }
func (s *Sync) Timeout() time.Duration   { return 5 * time.Minute }

func (s *Sync) Apply(ctx context.Context, req Request) model.ActionResult {
	if !req.State.Exists {
		url := req.Repo.PreferredCloneURL(s.deps.UseSSH)
		if url == "" {
			return failed(req.Repo, "no clone URL", errors.New("repository record has no clone URL"))
		}
		if req.DryRun {
			return skipped(req.Repo, "would run git clone "+url)
		}
		if err := gitx.Clone(ctx, s.deps.git(), url, req.Path); err != nil {
			return failed(req.Repo, "clone failed", err)
		}
		return success(req.Repo, "cloned")
	}
	if req.DryRun {
		return skipped(req.Repo, "would run git pull --ff-only")
	}
	if err := gitx.Pull(ctx, s.deps.git(), req.Path); err != nil {
		return failed(req.Repo, "pull failed", err)
	}
	if req.Status == model.StatusInSync {
		return success(req.Repo, "already up to date")
	}
	return success(req.Repo, "pulled")
}
