// SPDX-License-Identifier: MIT
package gitfleet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage per-repo assistant settings files",
}

var sandboxEnableCmd = &cobra.Command{
	Use:   "sandbox-enable",
	Short: actionSynopsis("sandbox-enable"),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting sandbox-enable")
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("sandbox-enable", action.Deps{})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

var settingsCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: actionSynopsis("settings-clean"),
	Long: `Find duplicate permission entries, empty sections and stale keys in
per-repo assistant settings files. Mode "analyze" reports what it finds;
mode "clean" rewrites the files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := getStringFlag(cmd, "mode")
		if mode == "" {
			mode = "analyze"
		}
		if mode != "analyze" && mode != "clean" {
			return fmt.Errorf("unknown mode %q (expected analyze or clean)", mode)
		}
		debugf(cmd, "starting settings-clean in %s mode", mode)
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("settings-clean", action.Deps{CleanMode: mode})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(sandboxEnableCmd)
	addRunFlags(sandboxEnableCmd)

	addFilterFlags(settingsCleanCmd)
	addRunFlags(settingsCleanCmd)
	settingsCleanCmd.Flags().String("mode", "analyze", "analyze reports issues, clean rewrites the file")

	settingsCmd.AddCommand(sandboxEnableCmd)
	settingsCmd.AddCommand(settingsCleanCmd)
	rootCmd.AddCommand(settingsCmd)
}
