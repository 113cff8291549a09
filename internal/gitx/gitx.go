// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/skaphos/gitfleet/internal/model"
)

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns
	// combined stdout/stderr output.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
}

// Run executes a git command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	return strings.TrimSpace(string(out)), err
}

// Exists reports whether dir holds a git checkout. The .git entry may be a
// directory or a file; the file form covers linked worktrees and submodules.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Inspect probes the checkout at dir and assembles its local state.
// Probes that fail by design (detached HEAD, unset upstream) fold into the
// state; unexpected git failures are returned to the caller.
func Inspect(ctx context.Context, r Runner, dir string) (model.LocalState, error) {
	if !Exists(dir) {
		return model.LocalState{}, nil
	}
	st := model.LocalState{Exists: true}

	// symbolic-ref fails when HEAD is detached; Branch stays empty.
	if branch, err := r.Run(ctx, dir, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
		st.Branch = strings.TrimSpace(branch)
	}
	// rev-parse fails on unborn branches; Commit stays empty.
	if hash, err := r.Run(ctx, dir, "rev-parse", "--short", "HEAD"); err == nil {
		st.Commit = strings.TrimSpace(hash)
	}

	statusOut, err := r.Run(ctx, dir, "status", "--porcelain=v1")
	if err != nil {
		return st, fmt.Errorf("git status: %w", err)
	}
	st.Dirty = ParsePorcelainStatus(statusOut).Dirty

	// @{upstream} resolution fails when no upstream is configured and
	// when HEAD is detached. Both mean there is nothing to compare to.
	upstream, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "@{upstream}")
	if err != nil {
		return st, nil
	}
	st.HasUpstream = true
	st.Upstream = strings.TrimSpace(upstream)

	counts, err := r.Run(ctx, dir, "rev-list", "--left-right", "--count", "HEAD...@{upstream}")
	if err != nil {
		return st, fmt.Errorf("git rev-list: %w", err)
	}
	st.Ahead, st.Behind = ParseRevListCount(counts)
	return st, nil
}

// Fetch runs a safe fetch with submodule recursion disabled.
func Fetch(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "-c", "fetch.recurseSubmodules=false", "fetch", "--all", "--prune", "--prune-tags", "--no-recurse-submodules")
	return err
}

// Clone creates a checkout of url at path. The parent directory must exist.
func Clone(ctx context.Context, r Runner, url, path string) error {
	_, err := r.Run(ctx, "", "clone", url, path)
	return err
}

// Pull fast-forwards the current branch. Diverged branches fail here
// rather than merge, so local history is never rewritten implicitly.
func Pull(ctx context.Context, r Runner, dir string) error {
	_, err := r.Run(ctx, dir, "pull", "--ff-only", "--no-recurse-submodules")
	return err
}
