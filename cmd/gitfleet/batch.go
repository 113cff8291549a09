// SPDX-License-Identifier: MIT
package gitfleet

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/cliio"
	"github.com/skaphos/gitfleet/internal/config"
	"github.com/skaphos/gitfleet/internal/engine"
	"github.com/skaphos/gitfleet/internal/gitx"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/progress"
	"github.com/skaphos/gitfleet/internal/termstyle"
)

const summaryBanner = "============================================================"

// buildAction constructs a registered action by name.
func buildAction(name string, deps action.Deps) (action.Action, error) {
	entry, ok := action.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown action %q (available: %s)", name, strings.Join(action.Names(), ", "))
	}
	return entry.New(deps), nil
}

// actionSynopsis returns the registered one-line description for an
// action, used as the cobra Short text so the two stay identical.
func actionSynopsis(name string) string {
	entry, ok := action.Lookup(name)
	if !ok {
		return ""
	}
	return entry.New(action.Deps{}).Synopsis()
}

// runBatch executes one action across the repository set and writes the
// trailing summary. The returned bool is false when the user declined the
// confirmation prompt.
func runBatch(cmd *cobra.Command, src *fleetSource, repos []model.Repository, act action.Action, opts engine.Options) (model.BatchSummary, bool, error) {
	if act.RequiresToken() && !src.Authenticated() {
		return model.BatchSummary{}, false, fmt.Errorf("%s requires a GitHub token: set %s in .env or the environment", act.Name(), config.EnvToken)
	}

	applyRunFlags(cmd, src, &opts)

	// Mutating batches confirm before touching anything; dry runs and
	// --yes skip the prompt.
	if act.Kind() == model.KindMutate && !opts.DryRun && !getBoolFlag(cmd, "yes") {
		question := fmt.Sprintf("Run %s on %d repositories? [y/N]: ", act.Name(), len(repos))
		confirmed, err := cliio.PromptYesNo(cmd.ErrOrStderr(), cmd.InOrStdin(), question)
		if err != nil {
			return model.BatchSummary{}, false, err
		}
		if !confirmed {
			infof(cmd, "%s cancelled", act.Name())
			return model.BatchSummary{}, false, nil
		}
	}

	setColorOutputMode(cmd, "table")
	eng := engine.New(&gitx.Probe{}, batchReporter(cmd))
	summary := eng.Run(cmd.Context(), act, repos, opts)

	if flagVerbose > 0 {
		logOutputWriteFailure(cmd, act.Name()+" results", writeResultsTable(cmd, summary))
	}
	writeBatchSummary(cmd, summary)
	raiseBatchExitCode(summary)
	infof(cmd, "%s completed: %d repos in %s", act.Name(), summary.Completed(), summary.Elapsed.Round(time.Millisecond))
	return summary, true, nil
}

// applyRunFlags fills the engine options every batch command shares from
// the run flag set and the config defaults. Fields the caller already set
// are left alone.
func applyRunFlags(cmd *cobra.Command, src *fleetSource, opts *engine.Options) {
	opts.Workers = getIntFlag(cmd, "workers")
	if opts.Workers <= 0 {
		opts.Workers = src.cfg.Defaults.Workers
	}
	opts.Sequential = getBoolFlag(cmd, "sequential")
	opts.DryRun = getBoolFlag(cmd, "dry-run")
	if secs := getIntFlag(cmd, "timeout"); secs > 0 {
		opts.Timeout = time.Duration(secs) * time.Second
	}
	opts.BaseDir = src.baseDir
	opts.Unauthenticated = !src.Authenticated()
}

// batchReporter picks the live progress line for interactive runs and the
// discard reporter everywhere else.
func batchReporter(cmd *cobra.Command) progress.Reporter {
	if flagQuiet {
		return progress.Discard{}
	}
	file, ok := cmd.ErrOrStderr().(*os.File)
	if !ok || !isTerminalFD(int(file.Fd())) {
		return progress.Discard{}
	}
	return progress.NewBar(file, !flagNoColor)
}

// writeBatchSummary prints the trailing summary block: counts, every
// failed repository with its message, and the skipped set (listed when
// small, grouped by reason otherwise).
func writeBatchSummary(cmd *cobra.Command, summary model.BatchSummary) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, summaryBanner)
	_, _ = fmt.Fprintf(out, "SUMMARY: %s\n", strings.ToUpper(summary.Action))
	_, _ = fmt.Fprintln(out, summaryBanner)
	_, _ = fmt.Fprintf(out, "Total repositories: %d\n", summary.Total)
	_, _ = fmt.Fprintf(out, "%s Succeeded: %d\n", termstyle.Paint(colorOutputEnabled, termstyle.GlyphOK, termstyle.Healthy), summary.Succeeded)
	_, _ = fmt.Fprintf(out, "%s Skipped: %d\n", termstyle.Paint(colorOutputEnabled, termstyle.GlyphSkip, termstyle.Warn), summary.Skipped)
	_, _ = fmt.Fprintf(out, "%s Failed: %d\n", termstyle.Paint(colorOutputEnabled, termstyle.GlyphFail, termstyle.Error), summary.Failed)
	if summary.Interrupted {
		_, _ = fmt.Fprintf(out, "Interrupted after %d of %d repositories\n", summary.Completed(), summary.Total)
	}

	if summary.Failed > 0 {
		_, _ = fmt.Fprintln(out, "\nFailed repositories:")
		for _, res := range summary.Failures {
			_, _ = fmt.Fprintf(out, "  - %s: %s\n", res.Repo, failureDetail(res))
		}
	}

	if summary.Skipped > 0 {
		if summary.Skipped <= 10 {
			_, _ = fmt.Fprintln(out, "\nSkipped repositories:")
			for _, res := range summary.Results {
				if res.Outcome == model.OutcomeSkipped {
					_, _ = fmt.Fprintf(out, "  - %s: %s\n", res.Repo, res.Message)
				}
			}
		} else {
			_, _ = fmt.Fprintln(out, "\nSkipped by reason:")
			reasons := make([]string, 0, len(summary.SkipReasons))
			for reason := range summary.SkipReasons {
				reasons = append(reasons, reason)
			}
			sort.Strings(reasons)
			for _, reason := range reasons {
				_, _ = fmt.Fprintf(out, "  - %s: %d\n", reason, len(summary.SkipReasons[reason]))
			}
		}
	}
	_, _ = fmt.Fprintln(out, summaryBanner)
}

// writeResultsTable prints one row per repository, shown with -v.
func writeResultsTable(cmd *cobra.Command, summary model.BatchSummary) error {
	rows := make([][]string, 0, len(summary.Results))
	for _, res := range summary.Results {
		rows = append(rows, []string{
			res.Repo,
			colorizeOutcome(res.Outcome),
			string(res.Status),
			resultDetail(res),
		})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, false, []string{"REPO", "OUTCOME", "STATUS", "DETAIL"}, rows)
}

func colorizeOutcome(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeSuccess:
		return termstyle.Colorize(colorOutputEnabled, string(outcome), termstyle.Healthy)
	case model.OutcomeSkipped:
		return termstyle.Colorize(colorOutputEnabled, string(outcome), termstyle.Warn)
	case model.OutcomeFailed:
		return termstyle.Colorize(colorOutputEnabled, string(outcome), termstyle.Error)
	default:
		return string(outcome)
	}
}

func resultDetail(res model.ActionResult) string {
	if res.Outcome == model.OutcomeFailed {
		return failureDetail(res)
	}
	detail := res.Message
	if res.Stale {
		detail += " " + termstyle.Colorize(colorOutputEnabled, "(stale)", termstyle.Warn)
	}
	return detail
}

func failureDetail(res model.ActionResult) string {
	detail := res.Message
	if res.Err != "" {
		if detail != "" {
			detail += ": "
		}
		detail += res.Err
	}
	if res.ErrorClass != "" && res.ErrorClass != "unknown" {
		detail += " (" + res.ErrorClass + ")"
	}
	return detail
}

func raiseBatchExitCode(summary model.BatchSummary) {
	if summary.Failed > 0 {
		raiseExitCode(1)
	}
	if summary.Interrupted {
		raiseExitCode(130)
	}
}
