// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPlaceholderName is returned when a placeholders key is not an
	// uppercase identifier.
	ErrInvalidPlaceholderName = errors.New("invalid placeholder name")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// Config is the top-level canonctl configuration.
	Config struct {
		// CanonDir is the directory holding the canonical templates and the
		// canon.yaml manifest. Empty means <config dir>/canon.
		CanonDir string `mapstructure:"canon_dir"`

		// ProfileRoots are directories scanned for user profiles
		// (e.g. /mnt/c/Users). Each immediate subdirectory is a candidate
		// profile unless excluded.
		ProfileRoots []string `mapstructure:"profile_roots"`

		// Profiles pins explicit profile home directories in addition to
		// (or instead of) root scanning.
		Profiles []string `mapstructure:"profiles"`

		// ExcludeProfiles are glob patterns matched against profile names;
		// matching profiles are skipped during discovery.
		ExcludeProfiles []string `mapstructure:"exclude_profiles"`

		// Placeholders are user-defined static placeholder values merged
		// over the built-in computed ones. Keys must be uppercase
		// identifiers as they appear inside {{...}} tokens.
		Placeholders map[string]string `mapstructure:"placeholders"`

		// Backup configures the backup store used by apply.
		Backup BackupConfig `mapstructure:"backup"`

		// UI configures terminal output behavior.
		UI UIConfig `mapstructure:"ui"`
	}

	// BackupConfig configures the backup store.
	BackupConfig struct {
		// Dir overrides the backup store location. Empty means the
		// platform state directory (~/.local/state/canonctl/backups).
		Dir string `mapstructure:"dir"`

		// Keep is the number of apply runs retained by 'backups prune'
		// when no --keep flag is given. Zero means keep everything.
		Keep int `mapstructure:"keep"`
	}

	// UIConfig configures terminal output behavior.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() checks.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// Validate checks that the ColorScheme is one of the recognized values.
func (c ColorScheme) Validate() error {
	switch c {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return nil
	default:
		return &InvalidColorSchemeError{Value: c}
	}
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		CanonDir:        "",
		ProfileRoots:    nil,
		Profiles:        nil,
		ExcludeProfiles: nil,
		Placeholders:    map[string]string{},
		Backup: BackupConfig{
			Dir:  "",
			Keep: 10,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
