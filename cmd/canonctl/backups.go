// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"canonctl/internal/backup"
	"canonctl/internal/config"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	backupsKeep int

	backupsCmd = &cobra.Command{
		Use:   "backups",
		Short: "Manage backups taken by apply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	backupsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List backup runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBackupStore()
			if err != nil {
				return err
			}

			runs, err := store.List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println(SubtitleStyle.Render("No backups yet."))
				return nil
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.SetStyle(table.StyleRounded)
			tw.AppendHeader(table.Row{"Run", "Started", "Files"})
			for _, run := range runs {
				tw.AppendRow(table.Row{
					run.RunID,
					run.StartedAt.Format("2006-01-02 15:04:05 MST"),
					len(run.Entries),
				})
			}
			tw.Render()
			return nil
		},
	})

	pruneCmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old backup runs",
		Long: `Delete the oldest backup runs, keeping the newest ones. The number to
keep comes from --keep, falling back to the 'backup.keep' config value.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := config.Load()
			if cfg == nil {
				cfg = config.DefaultConfig()
			}

			keep := backupsKeep
			if !cmd.Flags().Changed("keep") {
				keep = cfg.Backup.Keep
			}
			if keep <= 0 {
				fmt.Println(SubtitleStyle.Render("Retention is unlimited (keep = 0); nothing pruned."))
				return nil
			}

			store, err := openBackupStore()
			if err != nil {
				return err
			}

			removed, err := store.Prune(keep)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Printf("%s Nothing to prune (%d or fewer runs).\n", SuccessStyle.Render("✓"), keep)
				return nil
			}
			for _, id := range removed {
				fmt.Printf("  %s %s\n", ErrorStyle.Render("✗"), id)
			}
			fmt.Printf("%s Pruned %d run(s), kept the newest %d.\n", SuccessStyle.Render("✓"), len(removed), keep)
			return nil
		},
	}
	pruneCmd.Flags().IntVar(&backupsKeep, "keep", 0, "number of runs to keep (default: backup.keep from config)")
	backupsCmd.AddCommand(pruneCmd)

	backupsCmd.AddCommand(&cobra.Command{
		Use:   "restore <run>",
		Short: "Restore every file of a backup run",
		Long: `Copy every file of the given backup run back to its original location.
Stored files are verified against the run index checksums before
anything is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openBackupStore()
			if err != nil {
				return err
			}

			n, err := store.Restore(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s Restored %d file(s) from run %s.\n",
				SuccessStyle.Render("✓"), n, CmdStyle.Render(args[0]))
			return nil
		},
	})
}

// openBackupStore resolves the backup store without requiring a canon
// directory, so backups can be inspected even on a machine with no
// templates.
func openBackupStore() (*backup.Store, error) {
	cfg, _ := config.Load()
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	dir, err := config.BackupDir(cfg)
	if err != nil {
		return nil, err
	}
	return backup.NewStore(dir), nil
}
