// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"canonctl/internal/drift"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	statusProfiles []string
	statusTargets  []string

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show drift state for every profile and target",
		Long: `Render each canonical target and compare it against the live file of
every discovered profile. The comparison is hash-based on normalized
content, so line ending and JSON formatting differences do not count
as drift.

Exits with status 1 when any target drifts or is missing, so the
command can gate scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			report, err := ws.scan(statusProfiles, statusTargets)
			if err != nil {
				return err
			}

			printStatusTable(report)

			match, drifted, missing := report.Counts()
			fmt.Printf("\n%s %d in sync, %s, %s\n",
				SuccessStyle.Render("✓"), match,
				ErrorStyle.Render(fmt.Sprintf("%d drifted", drifted)),
				WarningStyle.Render(fmt.Sprintf("%d missing", missing)))

			if drifted+missing > 0 {
				fmt.Println(SubtitleStyle.Render("Run 'canonctl apply' to repair, or 'canonctl diff' to inspect."))
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
)

func init() {
	statusCmd.Flags().StringSliceVar(&statusProfiles, "profile", nil, "limit to the named profiles (repeatable)")
	statusCmd.Flags().StringSliceVar(&statusTargets, "target", nil, "limit to the named targets (repeatable)")
}

func printStatusTable(report *drift.Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stdout)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Profile", "Target", "State", "Live Path"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "State", Align: text.AlignCenter},
	})

	for _, result := range report.Results {
		tw.AppendRow(table.Row{
			result.Profile.Name,
			result.Target.Name,
			renderState(result.State),
			result.LivePath,
		})
	}
	tw.Render()
}

func renderState(state drift.State) string {
	switch state {
	case drift.StateMatch:
		return SuccessStyle.Render("match")
	case drift.StateDrift:
		return ErrorStyle.Render("drift")
	case drift.StateMissing:
		return WarningStyle.Render("missing")
	default:
		return string(state)
	}
}
