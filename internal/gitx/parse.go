package gitx

import (
	"strconv"
	"strings"
)

// WorktreeStatus is the parsed working tree state from `git status`.
type WorktreeStatus struct {
	Staged    int
	Unstaged  int
	Untracked int
	Dirty     bool
}

// ParsePorcelainStatus parses the output of `git status --porcelain=v1`
// into a WorktreeStatus.
func ParsePorcelainStatus(output string) WorktreeStatus {
	var wt WorktreeStatus
	lines := strings.Split(output, "\n")
	for _, line := range lines {
		if len(line) < 2 {
			continue
		}
		x := line[0]
		y := line[1]

		if x == '?' && y == '?' {
			wt.Untracked++
			continue
		}
		if x != ' ' && x != '?' {
			wt.Staged++
		}
		if y != ' ' && y != '?' {
			wt.Unstaged++
		}
	}
	wt.Dirty = wt.Staged > 0 || wt.Unstaged > 0 || wt.Untracked > 0
	return wt
}

// ParseRevListCount parses the output of:
//
//	git rev-list --left-right --count HEAD...@{upstream}
//
// Returns (ahead, behind).
func ParseRevListCount(output string) (int, int) {
	output = strings.TrimSpace(output)
	if output == "" {
		return 0, 0
	}
	parts := strings.SplitN(output, "\t", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	ahead, _ := strconv.Atoi(strings.TrimSpace(parts[0]))
	behind, _ := strconv.Atoi(strings.TrimSpace(parts[1]))
	return ahead, behind
}
