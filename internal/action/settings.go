// SPDX-License-Identifier: MIT
package action

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
)

// settingsRelPath is the per-repo assistant settings file the settings
// actions operate on.
const settingsRelPath = ".claude/settings.local.json"

// readSettings loads a JSON settings file. A missing file yields an empty
// document so callers can create it on write.
func readSettings(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}

// writeSettings marshals doc with the 2-space indent the assistant's own
// writer uses, creating parent directories as needed.
func writeSettings(path string, doc map[string]any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	raw = append(raw, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// deepMerge merges patch into base recursively. Maps merge key by key;
// any other patch value replaces the base value. Neither input is
// modified.
func deepMerge(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range patch {
		bm, baseIsMap := out[k].(map[string]any)
		pm, patchIsMap := v.(map[string]any)
		if baseIsMap && patchIsMap {
			out[k] = deepMerge(bm, pm)
			continue
		}
		out[k] = v
	}
	return out
}

// isSubset reports whether every leaf of patch is already present in doc
// with an equal value. The patch actions use it to stay idempotent.
func isSubset(patch, doc map[string]any) bool {
	for k, v := range patch {
		dv, ok := doc[k]
		if !ok {
			return false
		}
		pm, patchIsMap := v.(map[string]any)
		dm, docIsMap := dv.(map[string]any)
		if patchIsMap && docIsMap {
			if !isSubset(pm, dm) {
				return false
			}
			continue
		}
		if !reflect.DeepEqual(v, dv) {
			return false
		}
	}
	return true
}
