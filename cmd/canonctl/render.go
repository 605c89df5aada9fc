// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"sort"

	"canonctl/internal/canonical"

	"github.com/spf13/cobra"
)

var (
	renderShowValues bool

	renderCmd = &cobra.Command{
		Use:   "render [target]",
		Short: "Print a rendered canonical target",
		Long: `Render a target's template with all placeholders resolved and print the
result to stdout. With no target, every target is rendered with a
header line between them.

Use --values to print the resolved placeholder set instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace()
			if err != nil {
				return err
			}

			if renderShowValues {
				printValues(ws.renderer.Values())
				return nil
			}

			targets := ws.manifest.Targets
			if len(args) == 1 {
				t, err := ws.manifest.Target(args[0])
				if err != nil {
					return err
				}
				targets = []canonical.Target{t}
			}

			for i, t := range targets {
				if len(targets) > 1 {
					if i > 0 {
						fmt.Println()
					}
					fmt.Println(TitleStyle.Render("# " + t.Name))
				}
				rendered, err := ws.renderer.RenderTarget(t)
				if err != nil {
					return err
				}
				fmt.Print(rendered)
			}
			return nil
		},
	}
)

func init() {
	renderCmd.Flags().BoolVar(&renderShowValues, "values", false, "print the resolved placeholder values instead of rendering")
}

func printValues(values map[string]string) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s=%s\n", CmdStyle.Render(k), values[k])
	}
}
