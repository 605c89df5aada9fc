// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for canonctl.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"canonctl/internal/config"
	"canonctl/internal/issue"
	"canonctl/internal/logging"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "canonctl",
		Short: "Keep machine configs in sync with their canonical templates",
		Long: TitleStyle.Render("canonctl") + SubtitleStyle.Render(" - canonical config drift detection and repair") + `

canonctl renders canonical config templates ({{PLACEHOLDER}} tokens are
resolved from host facts and user-defined values), compares the results
against the live files of every user profile, and repairs drift with a
backup of whatever it overwrites.

Targets are declared in a canon.yaml manifest next to their templates.
Built-in placeholders cover WSL sizing: memory is half the machine's RAM
clamped to 2..16 GB, processors are 80% of the logical cores with a
floor of 2.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'canonctl config init' to scaffold the config and canon directory
  2. Edit the templates and canon.yaml under the canon directory
  3. Run 'canonctl status' to see drift, 'canonctl apply' to repair it

` + SubtitleStyle.Render("Examples:") + `
  canonctl status                 Show per-profile drift state
  canonctl apply --dry-run        Preview repairs without writing
  canonctl diff --profile alice   Show drift as a unified diff
  canonctl render wslconfig       Print a rendered target
  canonctl backups list           List apply backups`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/canonctl/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(watchCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig reads in config file and ENV variables if set.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFilePathOverride(cfgFile)
	}

	cfg, err := config.Load()
	if err != nil {
		// Config problems are surfaced but never block the command; the
		// defaults still work.
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	}

	// Apply verbose from config if not set via flag
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	logging.SetVerbose(verbose)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// GetVerbose returns the verbose flag value
func GetVerbose() bool {
	return verbose
}
