package gitfleet

import (
	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: actionSynopsis("clone"),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting clone")
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("clone", action.Deps{UseSSH: src.Authenticated()})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(cloneCmd)
	addRunFlags(cloneCmd)
	rootCmd.AddCommand(cloneCmd)
}
