// SPDX-License-Identifier: MIT

// Package action defines the per-repository operations GitFleet applies
// across a repository set. The engine probes and gates each repository
// before calling Apply; an action only performs its work and reports what
// happened.
package action

import (
	"context"
	"time"

	"github.com/skaphos/gitfleet/internal/execx"
	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
)

// Request is one application of an action to one repository. The engine
// fills it from discovery output and the local probe.
type Request struct {
	// Repo is the repository record from discovery or the snapshot cache.
	Repo model.Repository
	// Path is the expected checkout location under the base directory.
	Path string
	// State is the probed local state, refreshed beforehand when the
	// action asked for it.
	State model.LocalState
	// Status is the classification of State.
	Status model.SyncStatus
	// DryRun asks the action to report what it would do without doing it.
	DryRun bool
}

// Action is one operation appliable across the repository set.
//
// Kind selects the gating rules. SafeParallel marks actions whose
// applications are independent of each other; the engine runs the rest
// sequentially. RequiresToken marks actions that need authenticated
// discovery output. NeedsRemoteRefresh asks the engine to fetch before
// classifying. Timeout bounds one application.
type Action interface {
	Name() string
	Synopsis() string
	Kind() model.ActionKind
	SafeParallel() bool
	RequiresToken() bool
	NeedsRemoteRefresh() bool
	Timeout() time.Duration
	Apply(ctx context.Context, req Request) model.ActionResult
}

// Deps carries the external collaborators and run options actions share.
// Nil runners default to the real tools.
type Deps struct {
	// Git runs git.
	Git gitx.Runner
	// Gh runs the GitHub CLI, used for mutations the REST client does
	// not cover.
	Gh execx.Runner
	// AI runs the AI assistant CLI for prompt execution.
	AI execx.Runner
	// Sh runs shell commands for the MCP exec tool.
	Sh execx.Runner
	// UseSSH selects SSH clone URLs. Set when a credential is configured.
	UseSSH bool
	// Force relaxes per-action equality and existence skips.
	Force bool
	// Prompt is the template name or raw prompt text for the exec action.
	Prompt string
	// CleanMode selects "analyze" or "clean" for the settings-clean
	// action.
	CleanMode string
}

func (d Deps) git() gitx.Runner {
	if d.Git != nil {
		return d.Git
	}
	return &gitx.GitRunner{}
}

func (d Deps) gh() execx.Runner {
	if d.Gh != nil {
		return d.Gh
	}
	return &execx.CommandRunner{Bin: "gh"}
}

func (d Deps) ai() execx.Runner {
	if d.AI != nil {
		return d.AI
	}
	return &execx.CommandRunner{Bin: "claude"}
}

func (d Deps) sh() execx.Runner {
	if d.Sh != nil {
		return d.Sh
	}
	return &execx.CommandRunner{Bin: "sh"}
}

// success, skipped and failed build the three result shapes. The engine
// stamps Status and Stale onto every result after Apply returns.

func success(repo model.Repository, message string) model.ActionResult {
	return model.ActionResult{Repo: repo.DisplayName(), Outcome: model.OutcomeSuccess, Message: message}
}

func skipped(repo model.Repository, reason string) model.ActionResult {
	return model.ActionResult{Repo: repo.DisplayName(), Outcome: model.OutcomeSkipped, Message: reason}
}

func failed(repo model.Repository, message string, err error) model.ActionResult {
	return model.ActionResult{
		Repo:       repo.DisplayName(),
		Outcome:    model.OutcomeFailed,
		Message:    message,
		Err:        err.Error(),
		ErrorClass: gitx.ClassifyError(err),
	}
}
