// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"time"

	"canonctl/internal/watch"

	"github.com/spf13/cobra"
)

var (
	watchDebounce time.Duration
	watchIgnore   []string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-check drift whenever the canon directory changes",
		Long: `Watch the canon directory and re-run the drift scan each time the
manifest or a template changes. Edits landing close together are
coalesced into a single rescan. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			rescan := func(ctx context.Context, changed []string) error {
				fmt.Println()
				fmt.Println(TitleStyle.Render("Canon changed:"))
				for _, path := range changed {
					fmt.Printf("  %s\n", CmdStyle.Render(path))
				}

				// Reload the whole workspace: the manifest itself may
				// have changed.
				ws, err := openWorkspace()
				if err != nil {
					return err
				}
				report, err := ws.scan(nil, nil)
				if err != nil {
					return err
				}
				printStatusTable(report)
				return nil
			}

			w, err := watch.New(watch.Config{
				CanonDir: ws.canonDir,
				Ignore:   watchIgnore,
				Debounce: watchDebounce,
				OnChange: rescan,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Watching %s (Ctrl-C to stop)\n", CmdStyle.Render(ws.canonDir))
			return w.Run(cmd.Context())
		},
	}
)

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before rescanning (default 500ms)")
	watchCmd.Flags().StringSliceVar(&watchIgnore, "ignore", nil, "extra glob patterns to ignore (repeatable)")
}
