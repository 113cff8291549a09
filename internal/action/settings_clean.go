// SPDX-License-Identifier: MIT
package action

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/skaphos/gitfleet/internal/model"
)

// staleSettingsKeys are top-level settings keys superseded by the
// permissions block. The cleaner removes them.
var staleSettingsKeys = []string{"allowedTools", "ignorePatterns", "dontCrawlDirectory"}

// SettingsClean tidies per-repo assistant settings: duplicate permission
// entries, empty sections and stale keys. Mode "analyze" only reports;
// mode "clean" rewrites the file.
type SettingsClean struct {
	deps Deps
}

func NewSettingsClean(deps Deps) *SettingsClean { return &SettingsClean{deps: deps} }

func (s *SettingsClean) Name() string     { return "settings-clean" }
func (s *SettingsClean) Synopsis() string { return "tidy local assistant settings files" }

// Kind depends on the mode: analyze only reads, so it is gated and
// confirmed as a report.
func (s *SettingsClean) Kind() model.ActionKind {
	if s.deps.CleanMode == "clean" {
		return model.KindMutate
	}
	return model.KindReport
}

func (s *SettingsClean) SafeParallel() bool       { return true }
func (s *SettingsClean) RequiresToken() bool      { return false }
func (s *SettingsClean) NeedsRemoteRefresh() bool { return false }
func (s *SettingsClean) Timeout() time.Duration   { return 10 * time.Second }

func (s *SettingsClean) Apply(_ context.Context, req Request) model.ActionResult {
	mode := s.deps.CleanMode
	if mode == "" {
		mode = "analyze"
	}
	if mode != "analyze" && mode != "clean" {
		return failed(req.Repo, "settings-clean", fmt.Errorf("unknown mode %q", mode))
	}
	path := filepath.Join(req.Path, filepath.FromSlash(settingsRelPath))
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return skipped(req.Repo, "no settings file")
	}
	doc, err := readSettings(path)
	if err != nil {
		return failed(req.Repo, "reading "+settingsRelPath, err)
	}
	cleaned, report := cleanSettings(doc)
	if report.empty() {
		return skipped(req.Repo, "no issues found")
	}
	if mode == "analyze" {
		return success(req.Repo, "found "+report.String())
	}
	if req.DryRun {
		return skipped(req.Repo, "would remove "+report.String())
	}
	if err := writeSettings(path, cleaned); err != nil {
		return failed(req.Repo, "writing "+settingsRelPath, err)
	}
	return success(req.Repo, "removed "+report.String())
}

// settingsReport tallies the issues found in one settings file.
type settingsReport struct {
	duplicates    int
	emptySections int
	staleKeys     int
}

func (r settingsReport) empty() bool {
	return r.duplicates == 0 && r.emptySections == 0 && r.staleKeys == 0
}

func (r settingsReport) String() string {
	parts := make([]string, 0, 3)
	if r.duplicates > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate permission entries", r.duplicates))
	}
	if r.emptySections > 0 {
		parts = append(parts, fmt.Sprintf("%d empty sections", r.emptySections))
	}
	if r.staleKeys > 0 {
		parts = append(parts, fmt.Sprintf("%d stale keys", r.staleKeys))
	}
	return strings.Join(parts, ", ")
}

// cleanSettings returns a cleaned copy of doc and the tally of what it
// removed. Sections are top-level objects and the permission lists; a
// section that holds nothing after cleaning is dropped.
func cleanSettings(doc map[string]any) (map[string]any, settingsReport) {
	var report settingsReport
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}

	for _, key := range staleSettingsKeys {
		if _, ok := out[key]; ok {
			delete(out, key)
			report.staleKeys++
		}
	}

	if perms, ok := out["permissions"].(map[string]any); ok {
		cleaned := make(map[string]any, len(perms))
		for k, v := range perms {
			cleaned[k] = v
		}
		for _, list := range []string{"allow", "deny", "ask"} {
			entries, ok := cleaned[list].([]any)
			if !ok {
				continue
			}
			deduped, removed := dedupeEntries(entries)
			report.duplicates += removed
			if len(deduped) == 0 {
				delete(cleaned, list)
				report.emptySections++
				continue
			}
			cleaned[list] = deduped
		}
		if len(cleaned) == 0 {
			delete(out, "permissions")
			report.emptySections++
		} else {
			out["permissions"] = cleaned
		}
	}

	for k, v := range out {
		switch section := v.(type) {
		case map[string]any:
			if len(section) == 0 {
				delete(out, k)
				report.emptySections++
			}
		case []any:
			if len(section) == 0 {
				delete(out, k)
				report.emptySections++
			}
		}
	}
	return out, report
}

// dedupeEntries drops repeated string entries, keeping first occurrences
// in order. Non-string entries pass through untouched.
func dedupeEntries(entries []any) ([]any, int) {
	seen := make(map[string]bool, len(entries))
	out := make([]any, 0, len(entries))
	removed := 0
	for _, entry := range entries {
		s, ok := entry.(string)
		if !ok {
			out = append(out, entry)
			continue
		}
		if seen[s] {
			removed++
			continue
		}
		seen[s] = true
		out = append(out, entry)
	}
	return out, removed
}
