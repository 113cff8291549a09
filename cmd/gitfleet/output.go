package gitfleet

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type outputKind string

const (
	outputKindTable outputKind = "table"
	outputKindJSON  outputKind = "json"
	outputKindNames outputKind = "names"
)

// parseFormat resolves a --format value against the kinds a command
// supports. An empty value selects the first allowed kind.
func parseFormat(format string, allowed ...outputKind) (outputKind, error) {
	lower := strings.ToLower(strings.TrimSpace(format))
	if lower == "" && len(allowed) > 0 {
		return allowed[0], nil
	}
	for _, kind := range allowed {
		if lower == string(kind) {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q", format)
}

// logOutputWriteFailure records non-fatal output write/flush failures.
// CLI consumers frequently pipe to tools that close early (for example `head`),
// so we log and continue instead of treating these as command failures.
func logOutputWriteFailure(cmd *cobra.Command, context string, err error) {
	if err == nil {
		return
	}
	debugf(cmd, "ignored output write failure (%s): %v", context, err)
}
