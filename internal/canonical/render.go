// SPDX-License-Identifier: MPL-2.0

package canonical

import (
	"fmt"
	"os"
	"strings"

	"canonctl/internal/issue"

	"mvdan.cc/sh/v3/syntax"
)

// Renderer renders manifest targets with a fixed placeholder value set.
type Renderer struct {
	manifest *Manifest
	values   map[string]string
}

// NewRenderer creates a Renderer for the manifest and resolved values.
func NewRenderer(m *Manifest, values map[string]string) *Renderer {
	return &Renderer{manifest: m, values: values}
}

// Values returns the resolved placeholder value set.
func (r *Renderer) Values() map[string]string {
	return r.values
}

// RenderTarget reads the target's template, substitutes placeholders, and
// validates the result according to the target format. Bash targets that no
// longer parse as shell after substitution are rejected: canonctl must never
// propagate a broken .bashrc to every profile on the machine.
func (r *Renderer) RenderTarget(t Target) (string, error) {
	path := r.manifest.TemplatePath(t)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("read canonical template").
			WithResource(path).
			WithSuggestion("Check that the template listed in canon.yaml exists").
			Wrap(err).
			BuildError()
	}

	rendered, err := Render(string(data), r.values)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("render target").
			WithResource(t.Name).
			WithSuggestion("Define the missing values under 'placeholders' in your config").
			WithSuggestion("Inspect resolved values with 'canonctl render --values'").
			Wrap(err).
			BuildError()
	}

	if t.Format == FormatBash {
		if err := ValidateShell(rendered, t.Name); err != nil {
			return "", issue.NewErrorContext().
				WithOperation("validate rendered shell").
				WithResource(t.Name).
				WithSuggestion("Check custom placeholder values for unbalanced quotes").
				WithSuggestion(fmt.Sprintf("Inspect the render with 'canonctl render %s'", t.Name)).
				Wrap(err).
				BuildError()
		}
	}

	return rendered, nil
}

// ValidateShell parses content as POSIX/Bash shell and returns a parse error
// if it is not valid. name is used as the filename in error positions.
func ValidateShell(content, name string) error {
	_, err := syntax.NewParser().Parse(strings.NewReader(content), name)
	if err != nil {
		return fmt.Errorf("shell syntax error: %w", err)
	}
	return nil
}
