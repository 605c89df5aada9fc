// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"encoding/json"
	"fmt"
	"strings"

	"canonctl/internal/canonical"

	"github.com/tidwall/jsonc"
)

// Normalize prepares content for comparison according to the target format.
// Text and bash targets get whitespace normalization; JSON targets are
// re-encoded canonically first so only structural differences remain.
func Normalize(content []byte, format canonical.Format) ([]byte, error) {
	if format == canonical.FormatJSON {
		normalized, err := NormalizeJSON(content)
		if err != nil {
			return nil, err
		}
		return normalized, nil
	}
	return NormalizeText(content), nil
}

// NormalizeText normalizes whitespace-only differences: CRLF becomes LF,
// trailing spaces and tabs are stripped per line, and trailing blank lines
// are dropped. Non-empty content always ends with a single newline.
func NormalizeText(content []byte) []byte {
	s := strings.ReplaceAll(string(content), "\r\n", "\n")
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	// Drop trailing blank lines.
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	if end == 0 {
		return []byte{}
	}

	return []byte(strings.Join(lines[:end], "\n") + "\n")
}

// NormalizeJSON parses content as JSONC (comments and trailing commas
// tolerated, as Docker writes them) and re-encodes it as canonical indented
// JSON with sorted keys.
func NormalizeJSON(content []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(jsonc.ToJSON(content), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("re-encoding JSON: %w", err)
	}

	return append(out, '\n'), nil
}
