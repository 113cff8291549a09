// SPDX-License-Identifier: MIT
package gitfleet

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/cliio"
	"github.com/skaphos/gitfleet/internal/engine"
	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/strutil"
	"github.com/skaphos/gitfleet/internal/termstyle"
)

// statusDisplayOrder fixes the category order of the distribution footer,
// healthiest first.
var statusDisplayOrder = []model.SyncStatus{
	model.StatusInSync,
	model.StatusUnpushed,
	model.StatusUnpulled,
	model.StatusDiverged,
	model.StatusUncommitted,
	model.StatusDetachedHead,
	model.StatusNoUpstream,
	model.StatusNotCloned,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: actionSynopsis("status"),
	RunE: func(cmd *cobra.Command, args []string) error {
		debugf(cmd, "starting status")
		format, err := parseFormat(getStringFlag(cmd, "format"), outputKindTable, outputKindJSON)
		if err != nil {
			return err
		}
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("status", action.Deps{})
		if err != nil {
			return err
		}

		opts := engine.Options{NoRefresh: getBoolFlag(cmd, "no-fetch")}
		applyRunFlags(cmd, src, &opts)
		setColorOutputMode(cmd, string(format))

		eng := engine.New(&gitx.Probe{}, batchReporter(cmd))
		summary := eng.Run(cmd.Context(), act, repos, opts)

		switch format {
		case outputKindJSON:
			data, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			logOutputWriteFailure(cmd, "status json", err)
		default:
			logOutputWriteFailure(cmd, "status table", writeStatusTable(cmd, summary))
			writeStatusFailures(cmd, summary)
			writeStatusDistribution(cmd, summary)
		}

		raiseBatchExitCode(summary)
		infof(cmd, "status completed: %d repos in %s", summary.Completed(), summary.Elapsed.Round(time.Millisecond))
		return nil
	},
}

func init() {
	addFilterFlags(statusCmd)
	addRunFlags(statusCmd)
	statusCmd.Flags().Bool("no-fetch", false, "classify against the last-fetched remote state instead of fetching")
	addFormatFlag(statusCmd, "output format: table or json")
	rootCmd.AddCommand(statusCmd)
}

func writeStatusTable(cmd *cobra.Command, summary model.BatchSummary) error {
	detailLimit := textColumnLimit(cmd, 0, 48, 32)
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		detail := resultDetail(res)
		if detailLimit > 0 {
			detail = strutil.Truncate(detail, detailLimit)
		}
		rows = append(rows, []string{
			res.Repo,
			colorizeStatus(res.Status),
			detail,
		})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, false, []string{"REPO", "STATUS", "DETAIL"}, rows)
}

func colorizeStatus(status model.SyncStatus) string {
	switch status {
	case model.StatusInSync:
		return termstyle.Colorize(colorOutputEnabled, string(status), termstyle.Healthy)
	case model.StatusDiverged, model.StatusUncommitted:
		return termstyle.Colorize(colorOutputEnabled, string(status), termstyle.Error)
	case model.StatusNotCloned:
		return termstyle.Colorize(colorOutputEnabled, string(status), termstyle.Info)
	case "":
		return "-"
	default:
		return termstyle.Colorize(colorOutputEnabled, string(status), termstyle.Warn)
	}
}

// writeStatusDistribution prints the one-line category tally, healthiest
// category first.
func writeStatusDistribution(cmd *cobra.Command, summary model.BatchSummary) {
	if len(summary.ByStatus) == 0 {
		return
	}
	line := ""
	for _, status := range statusDisplayOrder {
		count := summary.ByStatus[status]
		if count == 0 {
			continue
		}
		if line != "" {
			line += ", "
		}
		line += fmt.Sprintf("%s %d", status, count)
	}
	if line != "" {
		infof(cmd, "by status: %s", line)
	}
}

func writeStatusFailures(cmd *cobra.Command, summary model.BatchSummary) {
	if summary.Failed == 0 {
		return
	}
	_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "Failed repositories:")
	for _, res := range summary.Failures {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "  - %s: %s\n", res.Repo, failureDetail(res))
	}
}
