// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"strings"
	"testing"
)

func TestUnifiedDiff(t *testing.T) {
	t.Run("identical content", func(t *testing.T) {
		diff := UnifiedDiff("a\nb\n", "a\nb\n")
		if strings.Contains(diff, "- ") || strings.Contains(diff, "+ ") {
			t.Errorf("identical content produced changes:\n%s", diff)
		}
	})

	t.Run("changed line", func(t *testing.T) {
		diff := UnifiedDiff("[wsl2]\nmemory=8GB\n", "[wsl2]\nmemory=4GB\n")
		if !strings.Contains(diff, "- memory=8GB") {
			t.Errorf("missing removal line:\n%s", diff)
		}
		if !strings.Contains(diff, "+ memory=4GB") {
			t.Errorf("missing addition line:\n%s", diff)
		}
		if !strings.Contains(diff, "  [wsl2]") {
			t.Errorf("missing common line:\n%s", diff)
		}
	})

	t.Run("line only in actual", func(t *testing.T) {
		diff := UnifiedDiff("a\n", "a\nextra\n")
		if !strings.Contains(diff, "+ extra") {
			t.Errorf("missing addition:\n%s", diff)
		}
	})

	t.Run("empty expected", func(t *testing.T) {
		diff := UnifiedDiff("", "a\n")
		if diff != "+ a\n" {
			t.Errorf("diff = %q", diff)
		}
	})
}
