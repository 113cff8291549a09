// SPDX-License-Identifier: MIT
package gitfleet

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/cliio"
	"github.com/skaphos/gitfleet/internal/scan"
	"github.com/skaphos/gitfleet/internal/termstyle"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Reconcile the base directory against the account",
	Long: `Walk the base directory, identify every git checkout by its primary
remote and reconcile the set against the account: tracked checkouts,
untracked ones the account does not know, foreign ones pointing at
another host or owner, and account repositories missing from disk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(getStringFlag(cmd, "format"), outputKindTable, outputKindJSON)
		if err != nil {
			return err
		}
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}

		debugf(cmd, "scanning %s", src.baseDir)
		report, err := scan.Run(cmd.Context(), scan.Options{
			BaseDir:    src.baseDir,
			Exclude:    src.cfg.Exclude,
			Username:   src.username,
			RemoteName: src.cfg.Defaults.RemoteName,
			Repos:      repos,
		})
		if err != nil {
			return err
		}

		switch format {
		case outputKindJSON:
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			logOutputWriteFailure(cmd, "scan json", err)
		default:
			setColorOutputMode(cmd, string(format))
			logOutputWriteFailure(cmd, "scan table", writeScanTable(cmd, report))
		}

		infof(cmd, "scan of %s: %d tracked, %d untracked, %d foreign, %d missing",
			report.BaseDir, len(report.Tracked), len(report.Untracked), len(report.Foreign), len(report.Missing))
		return nil
	},
}

func init() {
	addFilterFlags(scanCmd)
	scanCmd.Flags().String("dir", "", dirUsage)
	scanCmd.Flags().Bool("cached", false, cachedUsage)
	addFormatFlag(scanCmd, "output format: table or json")
	rootCmd.AddCommand(scanCmd)
}

func writeScanTable(cmd *cobra.Command, report *scan.Report) error {
	sections := [][]scan.Finding{report.Tracked, report.Untracked, report.Foreign, report.Missing}
	rows := make([][]string, 0, len(report.Tracked)+len(report.Untracked)+len(report.Foreign)+len(report.Missing))
	for _, findings := range sections {
		for _, f := range findings {
			rows = append(rows, []string{
				colorizeFindingKind(f.Kind),
				f.Name,
				valueOrDash(f.Branch),
				valueOrDash(f.RemoteURL),
			})
		}
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, false, []string{"KIND", "NAME", "BRANCH", "REMOTE"}, rows)
}

func colorizeFindingKind(kind scan.Kind) string {
	switch kind {
	case scan.KindTracked:
		return termstyle.Colorize(colorOutputEnabled, string(kind), termstyle.Healthy)
	case scan.KindUntracked:
		return termstyle.Colorize(colorOutputEnabled, string(kind), termstyle.Warn)
	case scan.KindForeign:
		return termstyle.Colorize(colorOutputEnabled, string(kind), termstyle.Error)
	case scan.KindMissing:
		return termstyle.Colorize(colorOutputEnabled, string(kind), termstyle.Info)
	default:
		return string(kind)
	}
}
