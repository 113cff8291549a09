// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"path/filepath"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
)

// sandboxPatch is the settings fragment sandbox-enable merges in. It turns
// the sandbox on, keeps bash usable inside it, and leaves the SSH agent
// socket reachable so git keeps working.
func sandboxPatch() map[string]any {
	return map[string]any{
		"permissions": map[string]any{
			"defaultMode": "acceptEdits",
		},
		"sandbox": map[string]any{
			"enabled":                  true,
			"autoAllowBashIfSandboxed": true,
			"network": map[string]any{
				"allowUnixSockets":  []any{"~/.ssh/agent.sock"},
				"allowLocalBinding": true,
			},
			"excludedCommands": []any{"docker"},
		},
	}
}

// SandboxEnable patches per-repo assistant settings to run the assistant
// sandboxed. Applying it twice is a no-op.
type SandboxEnable struct{}

func NewSandboxEnable() *SandboxEnable { return &SandboxEnable{} }

func (s *SandboxEnable) Name() string             { return "sandbox-enable" }
func (s *SandboxEnable) Synopsis() string         { return "enable the assistant sandbox in local settings" }
func (s *SandboxEnable) Kind() model.ActionKind   { return model.KindMutate }
func (s *SandboxEnable) SafeParallel() bool       { return true }
func (s *SandboxEnable) RequiresToken() bool      { return false }
func (s *SandboxEnable) NeedsRemoteRefresh() bool { return false }
func (s *SandboxEnable) Timeout() time.Duration   { return 10 * time.Second }

func (s *SandboxEnable) Apply(_ context.Context, req Request) model.ActionResult {
	path := filepath.Join(req.Path, filepath.FromSlash(settingsRelPath))
	current, err := readSettings(path)
	if err != nil {
		return failed(req.Repo, "reading "+settingsRelPath, err)
	}
	patch := sandboxPatch()
	if isSubset(patch, current) {
		return skipped(req.Repo, "sandbox already enabled")
	}
	if req.DryRun {
		return skipped(req.Repo, "would patch "+settingsRelPath)
	}
	if err := writeSettings(path, deepMerge(current, patch)); err != nil {
		return failed(req.Repo, "writing "+settingsRelPath, err)
	}
	return success(req.Repo, "sandbox enabled")
}
