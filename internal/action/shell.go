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

// Shell runs one fixed shell command in each checkout. Only the MCP
// fleet_exec tool constructs it; the CLI has no subcommand for it.
type Shell struct {
	deps    Deps
	command string
}

func NewShell(deps Deps, command string) *Shell {
	return &Shell{deps: deps, command: command}
}

func (s *Shell) Name() string             { return "shell" }
func (s *Shell) Synopsis() string         { return "run a shell command in each checkout" }
func (s *Shell) Kind() model.ActionKind   { return model.KindMutate }
func (s *Shell) SafeParallel() bool       { return false }
func (s *Shell) RequiresToken() bool      { return false }
func (s *Shell) NeedsRemoteRefresh() bool { return false }
func (s *Shell) Timeout() time.Duration   { return 2 * time.Minute }

func (s *Shell) Apply(ctx context.Context, req Request) model.ActionResult {
	if strings.TrimSpace(s.command) == "" {
		return failed(req.Repo, "shell", errors.New("no command configured"))
	}
	if req.DryRun {
		return skipped(req.Repo, "would run: "+s.command)
	}
	out, err := s.deps.sh().Run(ctx, req.Path, "-c", s.command)
	if err != nil {
		return failed(req.Repo, "command failed", err)
	}
	msg := strings.TrimSpace(out)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	if msg == "" {
		msg = "command succeeded"
	}
	return success(req.Repo, strutil.Truncate(msg, 120))
}
