// SPDX-License-Identifier: MPL-2.0

package drift

import (
	"testing"

	"canonctl/internal/canonical"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "crlf to lf",
			input: "[wsl2]\r\nmemory=8GB\r\n",
			want:  "[wsl2]\nmemory=8GB\n",
		},
		{
			name:  "trailing spaces stripped",
			input: "memory=8GB   \nprocessors=6\t\n",
			want:  "memory=8GB\nprocessors=6\n",
		},
		{
			name:  "trailing blank lines dropped",
			input: "memory=8GB\n\n\n",
			want:  "memory=8GB\n",
		},
		{
			name:  "missing final newline added",
			input: "memory=8GB",
			want:  "memory=8GB\n",
		},
		{
			name:  "interior blank lines kept",
			input: "[wsl2]\n\nmemory=8GB\n",
			want:  "[wsl2]\n\nmemory=8GB\n",
		},
		{
			name:  "empty input stays empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only becomes empty",
			input: "  \n\t\n",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(NormalizeText([]byte(tt.input))); got != tt.want {
				t.Errorf("NormalizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeJSON(t *testing.T) {
	t.Run("formatting differences collapse", func(t *testing.T) {
		a, err := NormalizeJSON([]byte(`{"wslEngineEnabled": true, "memoryMiB": 8192}`))
		if err != nil {
			t.Fatalf("NormalizeJSON returned error: %v", err)
		}
		b, err := NormalizeJSON([]byte("{\n\t\"memoryMiB\": 8192,\n\t\"wslEngineEnabled\": true\n}\n"))
		if err != nil {
			t.Fatalf("NormalizeJSON returned error: %v", err)
		}
		if string(a) != string(b) {
			t.Errorf("normalized forms differ:\n%s\n---\n%s", a, b)
		}
	})

	t.Run("jsonc comments tolerated", func(t *testing.T) {
		_, err := NormalizeJSON([]byte(`{
  // Docker writes comments sometimes
  "wslEngineEnabled": true,
}`))
		if err != nil {
			t.Fatalf("NormalizeJSON rejected JSONC: %v", err)
		}
	})

	t.Run("invalid JSON rejected", func(t *testing.T) {
		if _, err := NormalizeJSON([]byte(`{"unterminated": `)); err == nil {
			t.Fatal("expected error for invalid JSON")
		}
	})

	t.Run("value differences remain", func(t *testing.T) {
		a, _ := NormalizeJSON([]byte(`{"memoryMiB": 8192}`))
		b, _ := NormalizeJSON([]byte(`{"memoryMiB": 4096}`))
		if string(a) == string(b) {
			t.Error("different values normalized to the same form")
		}
	})
}

func TestNormalize_FormatDispatch(t *testing.T) {
	text, err := Normalize([]byte("a \r\n"), canonical.FormatText)
	if err != nil {
		t.Fatalf("Normalize(text) returned error: %v", err)
	}
	if string(text) != "a\n" {
		t.Errorf("Normalize(text) = %q", text)
	}

	if _, err := Normalize([]byte("not json"), canonical.FormatJSON); err == nil {
		t.Error("Normalize(json) should reject invalid JSON")
	}
}
