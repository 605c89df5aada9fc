// SPDX-License-Identifier: MPL-2.0

package canonical

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// placeholderPattern matches {{PLACEHOLDER}} tokens: uppercase identifiers
// with optional surrounding spaces inside the braces.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Z][A-Z0-9_]*)\s*\}\}`)

// MissingPlaceholdersError lists every placeholder a template references
// that the value set cannot resolve.
type MissingPlaceholdersError struct {
	Names []string
}

// Error implements the error interface.
func (e *MissingPlaceholdersError) Error() string {
	return fmt.Sprintf("missing placeholders: %s", strings.Join(e.Names, ", "))
}

// Render substitutes every {{PLACEHOLDER}} token in template with its value.
// All missing placeholders are collected into a single
// *MissingPlaceholdersError rather than failing on the first.
func Render(template string, values map[string]string) (string, error) {
	missing := make(map[string]bool)

	result := placeholderPattern.ReplaceAllStringFunc(template, func(token string) string {
		name := placeholderPattern.FindStringSubmatch(token)[1]
		value, ok := values[name]
		if !ok {
			missing[name] = true
			return token
		}
		return value
	})

	if len(missing) > 0 {
		names := maps.Keys(missing)
		slices.Sort(names)
		return "", &MissingPlaceholdersError{Names: names}
	}

	return result, nil
}

// ExtractPlaceholders returns the sorted set of placeholder names the
// template references.
func ExtractPlaceholders(template string) []string {
	seen := make(map[string]bool)
	for _, match := range placeholderPattern.FindAllStringSubmatch(template, -1) {
		seen[match[1]] = true
	}

	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}
