// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/strutil"
)

// Exec runs an assistant prompt in each checkout. Assistant rate limits
// make this strictly sequential.
type Exec struct {
	deps Deps
}

func NewExec(deps Deps) *Exec { return &Exec{deps: deps} }

func (e *Exec) Name() string             { return "exec" }
func (e *Exec) Synopsis() string         { return "run an assistant prompt in each checkout" }
func (e *Exec) Kind() model.ActionKind   { return model.KindMutate }
func (e *Exec) SafeParallel() bool       { return false }
func (e *Exec) RequiresToken() bool      { return false }
func (e *Exec) NeedsRemoteRefresh() bool { return false }
func (e *Exec) Timeout() time.Duration   { return 5 * time.Minute }

func (e *Exec) Apply(ctx context.Context, req Request) model.ActionResult {
	if strings.TrimSpace(e.deps.Prompt) == "" {
		return failed(req.Repo, "exec", errors.New("no prompt configured"))
	}
	tpl := ResolveTemplate(e.deps.Prompt)
	if !e.deps.Force {
		if ok, reason := tpl.ShouldRun(req.Repo, req.Path); !ok {
			return skipped(req.Repo, reason)
		}
	}
	vars := promptVars(req.Repo)
	if tpl.Vars != nil {
		vars = tpl.Vars(req.Repo)
	}
	prompt := ExpandPrompt(tpl.Prompt, vars)
	if req.DryRun {
		return skipped(req.Repo, "would run prompt: "+strutil.Truncate(prompt, 60))
	}
	if _, err := e.deps.ai().Run(ctx, req.Path, "-p", prompt, "--permission-mode", "acceptEdits", "--output-format", "json"); err != nil {
		return failed(req.Repo, "assistant run failed", err)
	}
	return success(req.Repo, "prompt executed")
}
