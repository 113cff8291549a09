// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"errors"
	"time"

	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// Clone creates checkouts for repositories missing locally. The engine
// gate skips everything that already exists.
type Clone struct {
	deps Deps
}

func NewClone(deps Deps) *Clone { return &Clone{deps: deps} }

func (c *Clone) Name() string             { return "clone" }
func (c *Clone) Synopsis() string         { return "clone repositories missing locally" }
func (c *Clone) Kind() model.ActionKind   { return model.KindClone }
func (c *Clone) SafeParallel() bool       { return true }
func (c *Clone) RequiresToken() bool      { return false }
func (c *Clone) NeedsRemoteRefresh() bool { return false }
func (c *Clone) Timeout() time.Duration   { return 5 * time.Minute }

func (c *Clone) Apply(ctx context.Context, req Request) model.ActionResult {
	url := req.Repo.PreferredCloneURL(c.deps.UseSSH)
	if url == "" {
		return failed(req.Repo, "no clone URL", errors.New("repository record has no clone URL"))
	}
	if req.DryRun {
		return skipped(req.Repo, "would run git clone "+url)
	}
	if err := gitx.Clone(ctx, c.deps.git(), url, req.Path); err != nil {
		return failed(req.Repo, "clone failed", err)
	}
	return success(req.Repo, "cloned")
}
