package gitfleet

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: actionSynopsis("sync"),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting sync")
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("sync", action.Deps{UseSSH: src.Authenticated()})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(syncCmd)
	addRunFlags(syncCmd)
	rootCmd.AddCommand(syncCmd)
}
