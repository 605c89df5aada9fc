// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// configDirOverride allows tests to override the config directory.
// This is necessary because os.UserHomeDir() doesn't reliably respect
// the HOME environment variable on all platforms (e.g., macOS in CI).
var configDirOverride string

// stateDirOverride allows tests to override the state directory.
var stateDirOverride string

// configFilePathOverride is set from the --config CLI flag and forces
// loading from a specific file.
var configFilePathOverride string

// Reset clears overrides. Call from test cleanup to restore defaults.
func Reset() {
	configDirOverride = ""
	stateDirOverride = ""
	configFilePathOverride = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}

// SetStateDirOverride sets a custom state directory path for testing.
func SetStateDirOverride(dir string) {
	stateDirOverride = dir
}

// SetConfigFilePathOverride forces configuration loading from the given
// file. Used by the --config CLI flag.
func SetConfigFilePathOverride(path string) {
	configFilePathOverride = path
}

// Load loads configuration honoring the --config override, falling back to
// the platform config directory and then to built-in defaults.
func Load() (*Config, error) {
	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
	return cfg, err
}
