// SPDX-License-Identifier: MIT

// Package execx runs external helper tools (gh, claude, shells) with
// captured output. Git has its own runner in gitx; this one is for
// everything else the actions shell out to.
package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes one invocation of an external tool inside dir and
// returns its trimmed stdout. Implementations must honor ctx cancellation.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// CommandRunner runs a fixed binary through os/exec. Stderr is folded
// into the returned error so callers see the tool's own diagnostics.
type CommandRunner struct {
	// Bin is the executable to run (for example, "gh" or "claude").
	Bin string
}

func (c *CommandRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return "", fmt.Errorf("%s %s: %s: %w", c.Bin, strings.Join(args, " "), errText, err)
		}
		return "", fmt.Errorf("%s %s: %w", c.Bin, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
