// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/canonctl/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/canonctl/config.cue on macOS, %APPDATA%\canonctl\config.cue
// on Windows). It covers the canon directory location, profile discovery roots and
// exclusions, user-defined placeholder values, and backup retention.
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
