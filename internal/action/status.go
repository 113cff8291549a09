// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"time"

	"github.com/skaphos/gitfleet/internal/classify"
	"github.com/skaphos/gitfleet/internal/model"
)

// Status reports the sync classification without touching anything. The
// message is the one-line detail shown in the status table.
type Status struct{}

func NewStatus() *Status { return &Status{} }

func (s *Status) Name() string             { return "status" }
func (s *Status) Synopsis() string         { return "report sync status without changing anything" }
func (s *Status) Kind() model.ActionKind   { return model.KindReport }
func (s *Status) SafeParallel() bool       { return true }
func (s *Status) RequiresToken() bool      { return false }
func (s *Status) NeedsRemoteRefresh() bool { return true }
func (s *Status) Timeout() time.Duration   { return time.Minute }

func (s *Status) Apply(_ context.Context, req Request) model.ActionResult {
	return success(req.Repo, classify.Summarize(req.State, req.Status))
}
