package gitfleet

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: actionSynopsis("pull"),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting pull")
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("pull", action.Deps{})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(pullCmd)
	addRunFlags(pullCmd)
	rootCmd.AddCommand(pullCmd)
}
