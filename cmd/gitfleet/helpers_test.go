// SPDX-License-Identifier: MIT
package gitfleet

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetCommandState returns the package globals and every parsed flag in
// the command tree to their defaults. Commands are package-level values,
// so state would otherwise leak between executions in the same test
// binary.
func resetCommandState(t *testing.T) {
	t.Helper()
	resetFlagSet(rootCmd)
	resetContext(rootCmd)
	flagVerbose = 0
	flagQuiet = false
	flagConfig = ""
	flagNoColor = false
	colorOutputEnabled = false
	exitCode = 0
	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	rootCmd.SetIn(nil)
}

func resetFlagSet(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlagSet(sub)
	}
}

// resetContext clears the context cached on every command in the tree.
// Cobra only propagates the execution context to a subcommand whose own
// context is nil, so a stale (canceled) context from a previous Execute
// would otherwise leak into the next run.
func resetContext(cmd *cobra.Command) {
	cmd.SetContext(nil)
	for _, sub := range cmd.Commands() {
		resetContext(sub)
	}
}

// runCommand executes one CLI invocation against buffered streams and
// resets all command state afterwards.
func runCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	if stdin != "" {
		rootCmd.SetIn(bytes.NewBufferString(stdin))
	}
	rootCmd.SetArgs(args)
	code = ExecuteWithExitCode()
	resetCommandState(t)
	return out.String(), errOut.String(), code
}
