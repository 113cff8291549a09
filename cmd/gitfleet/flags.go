package gitfleet

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/filter"
)

const (
	repoFilterUsage    = "target specific repositories by name or owner/name (repeatable)"
	orgFilterUsage     = "only repositories owned by this organization (repeatable)"
	patternFilterUsage = "only repositories whose name matches this glob (repeatable)"
	workersUsage       = "max parallel workers (0 uses the configured default)"
	timeoutUsage       = "per-repo timeout in seconds (0 uses each action's default)"
	dirUsage           = "base directory holding the checkouts"
	cachedUsage        = "use the snapshot from the last discovery instead of calling the GitHub API"
)

// addFilterFlags registers the repository selection flags shared by every
// command that operates on the fleet.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("repo", nil, repoFilterUsage)
	cmd.Flags().StringSlice("org", nil, orgFilterUsage)
	cmd.Flags().StringSlice("pattern", nil, patternFilterUsage)
	cmd.Flags().Bool("include-forks", false, "include forked repositories (excluded by default)")
	cmd.Flags().Bool("include-archived", false, "include archived repositories (excluded by default)")
	cmd.Flags().Bool("private-only", false, "only include private repositories")
	cmd.Flags().Bool("public-only", false, "only include public repositories")
}

// addRunFlags registers the batch execution flags shared by every command
// that runs an action across the fleet.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Int("workers", 0, workersUsage)
	cmd.Flags().Bool("sequential", false, "force sequential processing")
	cmd.Flags().Bool("dry-run", false, "preview changes without executing")
	cmd.Flags().BoolP("yes", "y", false, "skip confirmation prompts")
	cmd.Flags().Int("timeout", 0, timeoutUsage)
	cmd.Flags().String("dir", "", dirUsage)
	cmd.Flags().Bool("cached", false, cachedUsage)
}

func addFormatFlag(cmd *cobra.Command, usage string) {
	cmd.Flags().StringP("format", "o", "table", usage)
}

func filterOptionsFromFlags(cmd *cobra.Command) filter.Options {
	names, _ := cmd.Flags().GetStringSlice("repo")
	orgs, _ := cmd.Flags().GetStringSlice("org")
	patterns, _ := cmd.Flags().GetStringSlice("pattern")
	return filter.Options{
		Names:           names,
		Orgs:            orgs,
		Patterns:        patterns,
		IncludeForks:    getBoolFlag(cmd, "include-forks"),
		IncludeArchived: getBoolFlag(cmd, "include-archived"),
		PrivateOnly:     getBoolFlag(cmd, "private-only"),
		PublicOnly:      getBoolFlag(cmd, "public-only"),
	}
}

// getBoolFlag reads a bool flag, tolerating commands that never registered
// it.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	if cmd.Flags().Lookup(name) == nil {
		return false
	}
	value, _ := cmd.Flags().GetBool(name)
	return value
}

func getIntFlag(cmd *cobra.Command, name string) int {
	if cmd.Flags().Lookup(name) == nil {
		return 0
	}
	value, _ := cmd.Flags().GetInt(name)
	return value
}

func getStringFlag(cmd *cobra.Command, name string) string {
	if cmd.Flags().Lookup(name) == nil {
		return ""
	}
	value, _ := cmd.Flags().GetString(name)
	return value
}
