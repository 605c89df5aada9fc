// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"canonctl/internal/issue"
	"canonctl/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CanonDir != "" {
		t.Errorf("expected default canon dir to be empty, got %q", cfg.CanonDir)
	}

	if len(cfg.ProfileRoots) != 0 {
		t.Errorf("expected default profile roots to be empty, got %v", cfg.ProfileRoots)
	}

	if len(cfg.Placeholders) != 0 {
		t.Errorf("expected default placeholders to be empty, got %v", cfg.Placeholders)
	}

	if cfg.Backup.Keep != 10 {
		t.Errorf("expected default backup.keep to be 10, got %d", cfg.Backup.Keep)
	}

	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("expected default color scheme to be auto, got %s", cfg.UI.ColorScheme)
	}

	if cfg.UI.Verbose {
		t.Error("expected default verbose to be false")
	}
}

func TestConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is only exercised on linux")
	}

	restore := testutil.MustSetenv(t, "XDG_CONFIG_HOME", "/tmp/test-xdg-config")
	defer restore()

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}

	expected := filepath.Join("/tmp/test-xdg-config", AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}

	restore()
	cleanup := testutil.MustUnsetenv(t, "XDG_CONFIG_HOME")
	defer cleanup()

	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}

	home, _ := os.UserHomeDir()
	expected = filepath.Join(home, ".config", AppName)
	if dir != expected {
		t.Errorf("ConfigDir() = %s, want %s", dir, expected)
	}
}

func TestConfigDir_Override(t *testing.T) {
	defer Reset()
	SetConfigDirOverride("/custom/config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() returned error: %v", err)
	}
	if dir != "/custom/config" {
		t.Errorf("ConfigDir() = %s, want /custom/config", dir)
	}
}

func TestStateDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG lookup is only exercised on linux")
	}

	restore := testutil.MustSetenv(t, "XDG_STATE_HOME", "/tmp/test-xdg-state")
	defer restore()

	dir, err := StateDir()
	if err != nil {
		t.Fatalf("StateDir() returned error: %v", err)
	}

	expected := filepath.Join("/tmp/test-xdg-state", AppName)
	if dir != expected {
		t.Errorf("StateDir() = %s, want %s", dir, expected)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigDirPath: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("load with empty config dir returned error: %v", err)
	}
	if resolvedPath != "" {
		t.Errorf("expected no resolved path, got %q", resolvedPath)
	}
	if cfg.Backup.Keep != 10 {
		t.Errorf("expected defaults, got backup.keep = %d", cfg.Backup.Keep)
	}
}

func TestLoad_ValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
canon_dir: "/srv/canon"
profile_roots: ["/mnt/c/Users"]
exclude_profiles: ["svc-*"]
placeholders: {
	GIT_EMAIL: "team@example.com"
}
backup: {
	keep: 5
}
ui: {
	color_scheme: "dark"
}
`)

	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	if resolvedPath != filepath.Join(dir, "config.cue") {
		t.Errorf("resolved path = %q", resolvedPath)
	}
	if cfg.CanonDir != "/srv/canon" {
		t.Errorf("canon_dir = %q", cfg.CanonDir)
	}
	if len(cfg.ProfileRoots) != 1 || cfg.ProfileRoots[0] != "/mnt/c/Users" {
		t.Errorf("profile_roots = %v", cfg.ProfileRoots)
	}
	if cfg.Placeholders["GIT_EMAIL"] != "team@example.com" {
		t.Errorf("placeholders = %v", cfg.Placeholders)
	}
	if cfg.Backup.Keep != 5 {
		t.Errorf("backup.keep = %d", cfg.Backup.Keep)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("color_scheme = %s", cfg.UI.ColorScheme)
	}
}

func TestLoad_InvalidColorScheme(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
ui: {
	color_scheme: "neon"
}
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for invalid color scheme")
	}
	// The CUE schema rejects the value before Go-side validation runs.
	if !strings.Contains(err.Error(), "color_scheme") {
		t.Errorf("error should mention color_scheme: %v", err)
	}
}

func TestLoad_LowercasePlaceholderRejected(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
placeholders: {
	git_email: "team@example.com"
}
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for lowercase placeholder key")
	}
}

func TestLoad_DuplicateProfileRoots(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), `
profile_roots: ["/mnt/c/Users", "/mnt/c/Users/"]
`)

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err == nil {
		t.Fatal("expected error for duplicate profile roots")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("expected an ActionableError, got %T", err)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestGenerateCUE_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	original := DefaultConfig()
	original.CanonDir = "/srv/canon"
	original.ProfileRoots = []string{"/mnt/c/Users"}
	original.ExcludeProfiles = []string{"svc-*", "tmp*"}
	original.Placeholders = map[string]string{"GIT_EMAIL": "team@example.com"}
	original.Backup.Keep = 3
	original.UI.ColorScheme = ColorSchemeLight

	testutil.MustWriteFile(t, filepath.Join(dir, "config.cue"), GenerateCUE(original))

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config failed to load: %v", err)
	}

	if cfg.CanonDir != original.CanonDir {
		t.Errorf("canon_dir = %q, want %q", cfg.CanonDir, original.CanonDir)
	}
	if len(cfg.ExcludeProfiles) != 2 {
		t.Errorf("exclude_profiles = %v", cfg.ExcludeProfiles)
	}
	if cfg.Backup.Keep != 3 {
		t.Errorf("backup.keep = %d", cfg.Backup.Keep)
	}
	if cfg.UI.ColorScheme != ColorSchemeLight {
		t.Errorf("color_scheme = %s", cfg.UI.ColorScheme)
	}
}

func TestCanonDir_Resolution(t *testing.T) {
	defer Reset()
	SetConfigDirOverride("/custom/config")

	cfg := DefaultConfig()
	dir, err := CanonDir(cfg)
	if err != nil {
		t.Fatalf("CanonDir() returned error: %v", err)
	}
	if dir != filepath.Join("/custom/config", CanonDirName) {
		t.Errorf("CanonDir() = %s", dir)
	}

	cfg.CanonDir = "/srv/canon"
	dir, err = CanonDir(cfg)
	if err != nil {
		t.Fatalf("CanonDir() returned error: %v", err)
	}
	if dir != "/srv/canon" {
		t.Errorf("CanonDir() = %s, want /srv/canon", dir)
	}
}

func TestBackupDir_Resolution(t *testing.T) {
	defer Reset()
	SetStateDirOverride("/custom/state")

	cfg := DefaultConfig()
	dir, err := BackupDir(cfg)
	if err != nil {
		t.Fatalf("BackupDir() returned error: %v", err)
	}
	if dir != filepath.Join("/custom/state", "backups") {
		t.Errorf("BackupDir() = %s", dir)
	}

	cfg.Backup.Dir = "/srv/backups"
	dir, err = BackupDir(cfg)
	if err != nil {
		t.Fatalf("BackupDir() returned error: %v", err)
	}
	if dir != "/srv/backups" {
		t.Errorf("BackupDir() = %s, want /srv/backups", dir)
	}
}

func TestColorScheme_Validate(t *testing.T) {
	for _, valid := range []ColorScheme{ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight} {
		if err := valid.Validate(); err != nil {
			t.Errorf("Validate(%q) returned error: %v", valid, err)
		}
	}

	err := ColorScheme("neon").Validate()
	if err == nil {
		t.Fatal("expected error for invalid scheme")
	}
	if !errors.Is(err, ErrInvalidColorScheme) {
		t.Errorf("expected ErrInvalidColorScheme, got %v", err)
	}
}
