package gitfleet

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var descSyncCmd = &cobra.Command{
	Use:   "desc-sync",
	Short: actionSynopsis("desc-sync"),
	Long: `Extract a tagline from each local README and push it to the GitHub
repository description when the two differ. Repositories without a
checkout, forks and archived repositories are skipped.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting desc-sync")
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("desc-sync", action.Deps{Force: getBoolFlag(cmd, "force")})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(descSyncCmd)
	addRunFlags(descSyncCmd)
	descSyncCmd.Flags().Bool("force", false, "update even when the description already matches")
	rootCmd.AddCommand(descSyncCmd)
}
