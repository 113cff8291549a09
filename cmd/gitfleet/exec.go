package gitfleet

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/engine"
)

var execCmd = &cobra.Command{
	Use:   "exec <template|prompt>",
	Short: actionSynopsis("exec"),
	Long:  execLongHelp(),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := args[0]
		debugf(cmd, "starting exec with prompt %q", action.ResolveTemplate(prompt).Name)
		src, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}
		act, err := buildAction("exec", action.Deps{
			Prompt: prompt,
			Force:  getBoolFlag(cmd, "force"),
		})
		if err != nil {
			return err
		}
		_, _, err = runBatch(cmd, src, repos, act, engine.Options{})
		return err
	},
}

func init() {
	addFilterFlags(execCmd)
	addRunFlags(execCmd)
	execCmd.Flags().Bool("force", false, "reduce template skip checks to local file existence")
	rootCmd.AddCommand(execCmd)
}

// execLongHelp lists the built-in templates so the help stays in step with
// the template table.
func execLongHelp() string {
	var b strings.Builder
	b.WriteString("Run the AI assistant CLI with a prompt in every selected checkout,\n")
	b.WriteString("one repository at a time. The argument is either a built-in template\n")
	b.WriteString("name or raw prompt text.\n\nTemplates:\n")
	for _, tpl := range action.Templates() {
		fmt.Fprintf(&b, "  %-8s %s\n", tpl.Name, tpl.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}
