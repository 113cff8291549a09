package gitfleet

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitfleet/internal/cliio"
	"github.com/skaphos/gitfleet/internal/model"
	"github.com/skaphos/gitfleet/internal/strutil"
	"github.com/skaphos/gitfleet/internal/termstyle"
)

const listDescriptionWidth = 48

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the repositories the filters select",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(getStringFlag(cmd, "format"), outputKindTable, outputKindJSON, outputKindNames)
		if err != nil {
			return err
		}
		_, repos, err := resolveFleet(cmd)
		if err != nil {
			return err
		}

		switch format {
		case outputKindNames:
			for _, repo := range repos {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), repo.DisplayName())
			}
		case outputKindJSON:
			data, err := json.MarshalIndent(repos, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			logOutputWriteFailure(cmd, "list json", err)
		default:
			setColorOutputMode(cmd, string(format))
			logOutputWriteFailure(cmd, "list table", writeRepositoryTable(cmd, repos))
		}
		infof(cmd, "%d repositories", len(repos))
		return nil
	},
}

func init() {
	addFilterFlags(listCmd)
	listCmd.Flags().Bool("cached", false, cachedUsage)
	addFormatFlag(listCmd, "output format: table, json, or names")
	rootCmd.AddCommand(listCmd)
}

func writeRepositoryTable(cmd *cobra.Command, repos []model.Repository) error {
	descLimit := textColumnLimit(cmd, listDescriptionWidth, 32, 24)
	rows := make([][]string, 0, len(repos))
	for _, repo := range repos {
		rows = append(rows, []string{
			repo.DisplayName(),
			colorizeVisibility(repo),
			boolMark(repo.Fork),
			valueOrDash(repo.Language),
			strutil.Truncate(repo.Description, descLimit),
		})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), true, false, []string{"NAME", "VISIBILITY", "FORK", "LANGUAGE", "DESCRIPTION"}, rows)
}

func colorizeVisibility(repo model.Repository) string {
	label := "public"
	if repo.Private {
		label = "private"
	}
	if repo.Archived {
		label += ", archived"
	}
	if repo.Private {
		return termstyle.Colorize(colorOutputEnabled, label, termstyle.Warn)
	}
	return label
}

func boolMark(v bool) string {
	if v {
		return "yes"
	}
	return "-"
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
