// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List discovered user profiles",
	Long: `List the profiles canonctl will check: every immediate subdirectory of
the configured profile roots (minus well-known system accounts and
exclude patterns), plus any explicitly pinned profile paths.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := openWorkspace()
		if err != nil {
			return err
		}

		for _, p := range ws.profiles {
			fmt.Printf("%s\t%s\n", CmdStyle.Render(p.Name), p.Home)
		}
		fmt.Printf("\n%d profile(s)\n", len(ws.profiles))
		return nil
	},
}
