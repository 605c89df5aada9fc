// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"strings"

	"canonctl/internal/drift"

	"github.com/spf13/cobra"
)

var (
	diffProfiles []string
	diffTargets  []string

	diffCmd = &cobra.Command{
		Use:   "diff",
		Short: "Show drifted targets as unified diffs",
		Long: `Print a line diff between the canonical render and each drifted live
file. Missing files are listed without a diff; matching ones are
skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			report, err := ws.scan(diffProfiles, diffTargets)
			if err != nil {
				return err
			}

			printed := 0
			for _, result := range report.NeedsRepair() {
				header := fmt.Sprintf("%s/%s (%s)", result.Profile.Name, result.Target.Name, result.LivePath)
				switch result.State {
				case drift.StateMissing:
					fmt.Println(WarningStyle.Render("missing ") + header)
				case drift.StateDrift:
					fmt.Println(ErrorStyle.Render("drift   ") + header)
					printDiff(result)
				}
				printed++
			}

			if printed == 0 {
				fmt.Printf("%s No drift.\n", SuccessStyle.Render("✓"))
				return nil
			}
			return &ExitError{Code: 1}
		},
	}
)

func init() {
	diffCmd.Flags().StringSliceVar(&diffProfiles, "profile", nil, "limit to the named profiles (repeatable)")
	diffCmd.Flags().StringSliceVar(&diffTargets, "target", nil, "limit to the named targets (repeatable)")
}

func printDiff(result drift.Result) {
	live, err := os.ReadFile(result.LivePath)
	if err != nil {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(live file unreadable: "+err.Error()+")"))
		return
	}

	for _, line := range strings.Split(drift.UnifiedDiff(result.Rendered, string(live)), "\n") {
		switch {
		case strings.HasPrefix(line, "- "):
			fmt.Println("  " + SuccessStyle.Render(line))
		case strings.HasPrefix(line, "+ "):
			fmt.Println("  " + ErrorStyle.Render(line))
		default:
			fmt.Println("  " + line)
		}
	}
}
