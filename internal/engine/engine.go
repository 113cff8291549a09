// SPDX-License-Identifier: MIT

// Package engine applies one action across a repository set. It owns the
// worker pool and the probe/classify/gate sequence; actions only perform
// the per-repository work.
package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/classify"
	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/progress"
)

const (
	defaultWorkers = 8

	maxWorkerChannelBuffer = 100
)

// Probe observes the local checkout state the classifier runs on.
// *gitx.Probe is the production implementation.
type Probe interface {
	Inspect(ctx context.Context, path string) (model.LocalState, error)
	Refresh(ctx context.Context, path string) error
}

// Engine runs actions against repository sets.
type Engine struct {
	probe    Probe
	reporter progress.Reporter
}

// New creates an Engine. A nil probe means the default git probe; a nil
// reporter discards progress events.
func New(probe Probe, reporter progress.Reporter) *Engine {
	if probe == nil {
		probe = &gitx.Probe{}
	}
	if reporter == nil {
		reporter = progress.Discard{}
	}
	return &Engine{probe: probe, reporter: reporter}
}

// Options configures one batch run.
type Options struct {
	// Workers bounds concurrent repository applications. Non-positive
	// means the default of 8.
	Workers int
	// Sequential forces one repository at a time regardless of the
	// action's preference.
	Sequential bool
	// Unauthenticated marks discovery output obtained without a token.
	// Unauthenticated runs are sequential so burst traffic stays under
	// the anonymous API rate limit.
	Unauthenticated bool
	// DryRun is passed through to every action request.
	DryRun bool
	// NoRefresh skips the remote refresh even for actions that ask for
	// it, classifying against possibly stale tracking refs.
	NoRefresh bool
	// Timeout overrides the action's per-repository timeout when
	// positive.
	Timeout time.Duration
	// BaseDir is the directory checkouts live under.
	BaseDir string
}

func (o Options) workers(act action.Action) int {
	if o.Sequential || o.Unauthenticated || !act.SafeParallel() {
		return 1
	}
	if o.Workers > 0 {
		return o.Workers
	}
	return defaultWorkers
}

func (o Options) timeout(act action.Action) time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return act.Timeout()
}

// Run applies act to every repository and returns the aggregated summary.
//
// The input is deduplicated by repository id before dispatch, so the
// summary total can be smaller than len(repos). Cancellation stops
// dispatching and lets in-flight repositories finish; the partial summary
// is marked interrupted. Run never returns an error: every per-repository
// failure is a result, and callers decide severity from the counts.
func (e *Engine) Run(ctx context.Context, act action.Action, repos []model.Repository, opts Options) model.BatchSummary {
	start := time.Now()
	repos = model.DedupeRepositories(repos)
	summary := model.BatchSummary{Action: act.Name(), Total: len(repos)}

	e.reporter.Begin(len(repos))

	sem := make(chan struct{}, opts.workers(act))
	out := make(chan model.ActionResult, workerChannelBufferSize(len(repos)))

	// Dispatch on its own goroutine so collection below drains out while
	// workers are still producing; a worker blocked on a full out channel
	// would otherwise hold its semaphore slot and wedge the dispatch loop.
	go func() {
		var wg sync.WaitGroup
		for _, repo := range repos {
			if ctx.Err() != nil {
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(repo model.Repository) {
				defer wg.Done()
				defer func() { <-sem }()
				out <- e.processRepo(ctx, act, repo, opts)
			}(repo)
		}
		wg.Wait()
		close(out)
	}()

	// Collect on this goroutine so summary writes and reporter calls need
	// no locking.
	for res := range out {
		summary.Add(res)
		e.reporter.Observe(res)
	}
	e.reporter.End()

	if ctx.Err() != nil {
		summary.Interrupted = true
	}
	summary.SortResults()
	summary.Elapsed = time.Since(start)
	return summary
}

// processRepo runs the probe/refresh/classify/gate/apply sequence for one
// repository. A panicking action is converted to a failed result so one
// repository cannot take down the batch.
func (e *Engine) processRepo(ctx context.Context, act action.Action, repo model.Repository, opts Options) (res model.ActionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = model.ActionResult{
				Repo:    repo.DisplayName(),
				Outcome: model.OutcomeFailed,
				Message: "internal error",
				Err:     fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	if timeout := opts.timeout(act); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	path := filepath.Join(opts.BaseDir, repo.Name)
	st, err := e.probe.Inspect(ctx, path)
	if err != nil {
		return failure(repo, "probing local state", err)
	}

	if st.Exists && act.NeedsRemoteRefresh() && !opts.NoRefresh {
		st = e.refresh(ctx, path, st)
	}

	status := classify.Classify(st)
	if dec := classify.Gate(act.Kind(), status); !dec.Proceed {
		return model.ActionResult{
			Repo:    repo.DisplayName(),
			Outcome: model.OutcomeSkipped,
			Message: dec.Reason,
			Status:  status,
			Stale:   st.Stale,
		}
	}

	res = act.Apply(ctx, action.Request{
		Repo:   repo,
		Path:   path,
		State:  st,
		Status: status,
		DryRun: opts.DryRun,
	})
	res.Status = status
	res.Stale = st.Stale
	return res
}

// refresh fetches and re-inspects. A failure on either step degrades to
// the pre-refresh state marked stale instead of failing the repository.
func (e *Engine) refresh(ctx context.Context, path string, st model.LocalState) model.LocalState {
	if err := e.probe.Refresh(ctx, path); err != nil {
		st.Stale = true
		return st
	}
	fresh, err := e.probe.Inspect(ctx, path)
	if err != nil {
		st.Stale = true
		return st
	}
	return fresh
}

func failure(repo model.Repository, message string, err error) model.ActionResult {
	return model.ActionResult{
		Repo:       repo.DisplayName(),
		Outcome:    model.OutcomeFailed,
		Message:    message,
		Err:        err.Error(),
		ErrorClass: gitx.ClassifyError(err),
	}
}

func workerChannelBufferSize(repoCount int) int {
	if repoCount <= 0 {
		return 1
	}
	if repoCount > maxWorkerChannelBuffer {
		return maxWorkerChannelBuffer
	}
	return repoCount
}
