package gitfleet

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/action"
	"github.com/skaphos/gitfleet/internal/mcp"
	"github.com/skaphos/gitfleet/internal/model"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the fleet over the Model Context Protocol on stdio",
	Long: `Run a Model Context Protocol server on stdin/stdout exposing the
fleet to AI assistants: fleet_list, fleet_status and fleet_sync, plus
fleet_exec when --allow-exec is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := newFleetSource(cmd)
		if err != nil {
			return err
		}
		debugf(cmd, "starting MCP server for %s", src.baseDir)
		srv := mcp.NewServer(mcp.Config{
			Version: Version,
			Repos: func(ctx context.Context) ([]model.Repository, error) {
				return src.Repositories(ctx, cmd)
			},
			ActionDeps: action.Deps{UseSSH: src.Authenticated()},
			BaseDir:    src.baseDir,
			Workers:    src.cfg.Defaults.Workers,
			AllowExec:  getBoolFlag(cmd, "allow-exec"),
		})
		return srv.Serve()
	},
}

func init() {
	mcpCmd.Flags().String("dir", "", dirUsage)
	mcpCmd.Flags().Bool("cached", false, cachedUsage)
	mcpCmd.Flags().Bool("allow-exec", false, "register the fleet_exec tool (runs shell commands in checkouts)")
	rootCmd.AddCommand(mcpCmd)
}
