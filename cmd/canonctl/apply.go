// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"canonctl/internal/reconcile"

	"github.com/spf13/cobra"
)

var (
	applyDryRun   bool
	applyProfiles []string
	applyTargets  []string

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Repair drifted and missing targets",
		Long: `Scan for drift and repair it: drifted live files are backed up and
overwritten with the canonical render, missing files are created.

Backups are grouped into one run per apply; use 'canonctl backups list'
to inspect them and 'canonctl backups restore <run>' to roll back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			report, err := ws.scan(applyProfiles, applyTargets)
			if err != nil {
				return err
			}

			summary, err := reconcile.New(ws.store, applyDryRun).Apply(report)
			if err != nil {
				return err
			}

			printApplySummary(summary)
			return nil
		},
	}
)

func init() {
	applyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "show what would be repaired without writing")
	applyCmd.Flags().StringSliceVar(&applyProfiles, "profile", nil, "limit to the named profiles (repeatable)")
	applyCmd.Flags().StringSliceVar(&applyTargets, "target", nil, "limit to the named targets (repeatable)")
}

func printApplySummary(summary *reconcile.Summary) {
	if len(summary.Actions) == 0 {
		fmt.Printf("%s Everything already matches the canonical templates.\n", SuccessStyle.Render("✓"))
		return
	}

	verb := "Repaired"
	if summary.DryRun {
		verb = "Would repair"
	}

	for _, action := range summary.Actions {
		fmt.Printf("  %s %s/%s %s %s\n",
			SuccessStyle.Render("•"),
			action.Result.Profile.Name,
			action.Result.Target.Name,
			SubtitleStyle.Render(string(action.Kind)),
			CmdStyle.Render(action.Result.LivePath))
	}

	overwritten, created := summary.Counts()
	fmt.Printf("\n%s %d target(s): %d overwritten, %d created\n",
		verb, len(summary.Actions), overwritten, created)

	if summary.BackupRunID != "" {
		fmt.Printf("Backup run: %s\n", CmdStyle.Render(summary.BackupRunID))
	}
}
