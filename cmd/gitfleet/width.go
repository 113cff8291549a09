// SPDX-License-Identifier: MIT
package gitfleet

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Breakpoints below which free-text table columns shrink.
const (
	narrowTerminalWidth = 100
	tinyTerminalWidth   = 80
)

var getTerminalSize = term.GetSize

// terminalWidth reports the column count of the terminal behind the
// command's stdout. ok is false when stdout is redirected.
func terminalWidth(cmd *cobra.Command) (int, bool) {
	if cmd == nil {
		return 0, false
	}
	file, isFile := cmd.OutOrStdout().(*os.File)
	if !isFile {
		return 0, false
	}
	fd := int(file.Fd())
	if !isTerminalFD(fd) {
		return 0, false
	}
	width, _, err := getTerminalSize(fd)
	if err != nil || width <= 0 {
		return 0, false
	}
	return width, true
}

// textColumnLimit picks the rune budget for a table's free-text column.
// Zero means unbounded. Redirected output keeps the normal budget so
// pipes and files retain full detail.
func textColumnLimit(cmd *cobra.Command, normal, narrow, tiny int) int {
	width, ok := terminalWidth(cmd)
	if !ok {
		return normal
	}
	return textColumnLimitForWidth(width, normal, narrow, tiny)
}

func textColumnLimitForWidth(width, normal, narrow, tiny int) int {
	switch {
	case width > 0 && width < tinyTerminalWidth && tiny > 0:
		return tiny
	case width > 0 && width < narrowTerminalWidth && narrow > 0:
		return narrow
	default:
		return normal
	}
}
