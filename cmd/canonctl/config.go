// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"canonctl/internal/canonical"
	"canonctl/internal/config"
	"canonctl/internal/issue"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage canonctl configuration",
	Long: `Manage canonctl configuration.

Configuration is stored in:
  - Linux: ~/.config/canonctl/config.cue
  - macOS: ~/Library/Application Support/canonctl/config.cue
  - Windows: %APPDATA%\canonctl\config.cue`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration and a starter canon directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render("auto")
		fmt.Fprint(os.Stderr, rendered)
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgDir, dirErr := config.ConfigDir()
	cfgPath := ""
	if dirErr == nil {
		cfgPath = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	}
	if cfgPath != "" && fileExistsCheck(cfgPath) {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	canonDir, _ := config.CanonDir(cfg)
	backupDir, _ := config.BackupDir(cfg)
	fmt.Printf("%s: %s\n", CmdStyle.Render("Canon directory"), canonDir)
	fmt.Printf("%s: %s\n", CmdStyle.Render("Backup store"), backupDir)
	fmt.Println()

	fmt.Printf("%s:\n", CmdStyle.Render("profile_roots"))
	if len(cfg.ProfileRoots) == 0 {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, root := range cfg.ProfileRoots {
		fmt.Printf("  - %s\n", SuccessStyle.Render(root))
	}

	fmt.Printf("%s:\n", CmdStyle.Render("profiles"))
	if len(cfg.Profiles) == 0 {
		fmt.Printf("  %s\n", SubtitleStyle.Render("(none pinned)"))
	}
	for _, p := range cfg.Profiles {
		fmt.Printf("  - %s\n", SuccessStyle.Render(p))
	}

	if len(cfg.ExcludeProfiles) > 0 {
		fmt.Printf("%s:\n", CmdStyle.Render("exclude_profiles"))
		for _, pat := range cfg.ExcludeProfiles {
			fmt.Printf("  - %s\n", SuccessStyle.Render(pat))
		}
	}

	if len(cfg.Placeholders) > 0 {
		fmt.Printf("%s:\n", CmdStyle.Render("placeholders"))
		printValues(cfg.Placeholders)
	}

	fmt.Println()
	fmt.Printf("%s:\n", CmdStyle.Render("backup"))
	fmt.Printf("  keep: %s\n", SuccessStyle.Render(fmt.Sprintf("%d", cfg.Backup.Keep)))

	fmt.Printf("%s:\n", CmdStyle.Render("ui"))
	fmt.Printf("  color_scheme: %s\n", SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("  verbose: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func initConfig() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	if err := config.CreateDefaultConfig(); err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	fmt.Printf("%s Created default configuration at %s\n",
		SuccessStyle.Render("✓"), filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	canonDir, err := config.CanonDir(nil)
	if err != nil {
		return err
	}
	created, err := scaffoldCanonDir(canonDir)
	if err != nil {
		return err
	}
	if created {
		fmt.Printf("%s Created starter canon directory at %s\n", SuccessStyle.Render("✓"), canonDir)
		fmt.Println(SubtitleStyle.Render("Edit the templates there, then run 'canonctl status'."))
	} else {
		fmt.Printf("%s Canon directory already exists at %s\n", SuccessStyle.Render("•"), canonDir)
	}
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))

	canonDir, err := config.CanonDir(nil)
	if err == nil {
		fmt.Printf("Canon directory: %s\n", canonDir)
	}
	return nil
}

// starterManifest and the starter templates give 'config init' a working
// canon directory covering the usual WSL trio.
const starterManifest = `targets:
  - name: wslconfig
    template: wslconfig.tmpl
    dest: .wslconfig

  - name: bashrc
    template: bashrc.tmpl
    dest: .bashrc
    format: bash

  - name: docker-settings
    template: docker-settings.json.tmpl
    dest: AppData/Roaming/Docker/settings.json
    format: json
`

var starterTemplates = map[string]string{
	"wslconfig.tmpl": `[wsl2]
memory={{WSL_MEMORY_GB}}GB
processors={{WSL_PROCESSORS}}
swap=0
localhostForwarding=true
`,
	"bashrc.tmpl": `# Managed by canonctl; edit the canonical template instead.
export EDITOR=vim
export HISTSIZE=10000
export HISTCONTROL=ignoredups

alias ll='ls -alF'
`,
	"docker-settings.json.tmpl": `{
  "memoryMiB": {{WSL_MEMORY_GB}}000,
  "cpus": {{WSL_PROCESSORS}},
  "wslEngineEnabled": true
}
`,
}

// scaffoldCanonDir writes the starter manifest and templates. It refuses to
// touch an existing canon directory.
func scaffoldCanonDir(canonDir string) (bool, error) {
	if _, err := os.Stat(canonDir); err == nil {
		return false, nil
	}

	if err := os.MkdirAll(canonDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create canon directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(canonDir, canonical.ManifestFileName), []byte(starterManifest), 0o644); err != nil {
		return false, fmt.Errorf("failed to write starter manifest: %w", err)
	}
	for name, content := range starterTemplates {
		if err := os.WriteFile(filepath.Join(canonDir, name), []byte(content), 0o644); err != nil {
			return false, fmt.Errorf("failed to write starter template %s: %w", name, err)
		}
	}
	return true, nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
