// SPDX-License-Identifier: MPL-2.0

package canonical

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"canonctl/internal/issue"

	"gopkg.in/yaml.v3"
)

const (
	// ManifestFileName is the manifest file name inside the canon directory.
	ManifestFileName = "canon.yaml"

	// FormatText targets are compared after whitespace normalization only.
	FormatText Format = "text"
	// FormatBash targets are additionally syntax-checked as shell before writing.
	FormatBash Format = "bash"
	// FormatJSON targets are compared structurally: parsed as JSONC and
	// re-encoded canonically, so formatting-only differences are not drift.
	FormatJSON Format = "json"
)

var (
	// ErrInvalidFormat is returned when a target format is not recognized.
	ErrInvalidFormat = errors.New("invalid target format")
	// ErrTargetNotFound is returned by Manifest.Target for unknown names.
	ErrTargetNotFound = errors.New("target not found")
)

type (
	// Format selects how a target is normalized, compared, and validated.
	Format string

	// Target is one managed configuration file: a canonical template and
	// its destination path relative to each profile's home directory.
	Target struct {
		// Name identifies the target in CLI output and flags.
		Name string `yaml:"name"`

		// Template is the template file path relative to the canon directory.
		Template string `yaml:"template"`

		// Dest is the destination path relative to a profile home
		// (e.g. ".wslconfig" or "AppData/Roaming/Docker/settings.json").
		Dest string `yaml:"dest"`

		// Format defaults to FormatText when empty.
		Format Format `yaml:"format"`
	}

	// Manifest is the parsed canon.yaml.
	Manifest struct {
		Targets []Target `yaml:"targets"`

		// dir is the canon directory the manifest was loaded from.
		dir string `yaml:"-"`
	}
)

// Validate checks that the Format is one of the recognized values.
func (f Format) Validate() error {
	switch f {
	case FormatText, FormatBash, FormatJSON:
		return nil
	default:
		return fmt.Errorf("%w: %q (valid: text, bash, json)", ErrInvalidFormat, f)
	}
}

// LoadManifest reads and validates canon.yaml from the canon directory.
func LoadManifest(canonDir string) (*Manifest, error) {
	if info, err := os.Stat(canonDir); err != nil || !info.IsDir() {
		return nil, issue.NewErrorContext().
			WithOperation("open canon directory").
			WithResource(canonDir).
			WithSuggestion("Run 'canonctl config init' to scaffold a canon directory").
			WithSuggestion("Check the 'canon_dir' value with 'canonctl config show'").
			Wrap(fmt.Errorf("not a directory: %s", canonDir)).
			BuildError()
	}

	path := filepath.Join(canonDir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load canon manifest").
			WithResource(path).
			WithSuggestion("Create a canon.yaml manifest listing the managed targets").
			Wrap(err).
			BuildError()
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("parse canon manifest").
			WithResource(path).
			WithSuggestion("Check the YAML syntax near the position in the error above").
			Wrap(err).
			BuildError()
	}
	m.dir = canonDir

	if err := m.validate(); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("validate canon manifest").
			WithResource(path).
			Wrap(err).
			BuildError()
	}

	return &m, nil
}

// Dir returns the canon directory the manifest was loaded from.
func (m *Manifest) Dir() string {
	return m.dir
}

// Target returns the named target, or ErrTargetNotFound.
func (m *Manifest) Target(name string) (Target, error) {
	for _, t := range m.Targets {
		if t.Name == name {
			return t, nil
		}
	}
	return Target{}, fmt.Errorf("%w: %q", ErrTargetNotFound, name)
}

// TemplatePath returns the absolute path of the target's template file.
func (m *Manifest) TemplatePath(t Target) string {
	return filepath.Join(m.dir, filepath.FromSlash(t.Template))
}

// validate applies the structural rules yaml decoding cannot express:
// required fields, unique names, sane destination paths, known formats.
func (m *Manifest) validate() error {
	if len(m.Targets) == 0 {
		return errors.New("manifest defines no targets")
	}

	seen := make(map[string]int)
	for i := range m.Targets {
		t := &m.Targets[i]

		if t.Name == "" {
			return fmt.Errorf("targets[%d]: missing name", i)
		}
		if t.Template == "" {
			return fmt.Errorf("targets[%d] (%s): missing template", i, t.Name)
		}
		if t.Dest == "" {
			return fmt.Errorf("targets[%d] (%s): missing dest", i, t.Name)
		}

		if firstIdx, exists := seen[t.Name]; exists {
			return fmt.Errorf("targets[%d]: duplicate name %q (same as targets[%d])", i, t.Name, firstIdx)
		}
		seen[t.Name] = i

		// Destinations must stay inside the profile home.
		dest := filepath.ToSlash(t.Dest)
		if strings.HasPrefix(dest, "/") || filepath.IsAbs(t.Dest) {
			return fmt.Errorf("targets[%d] (%s): dest must be relative to the profile home, got %q", i, t.Name, t.Dest)
		}
		for _, part := range strings.Split(dest, "/") {
			if part == ".." {
				return fmt.Errorf("targets[%d] (%s): dest must not traverse outside the profile home, got %q", i, t.Name, t.Dest)
			}
		}

		if t.Format == "" {
			t.Format = FormatText
		}
		if err := t.Format.Validate(); err != nil {
			return fmt.Errorf("targets[%d] (%s): %w", i, t.Name, err)
		}
	}

	return nil
}
