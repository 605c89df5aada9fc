// SPDX-License-Identifier: MPL-2.0

package hostinfo

import (
	"path/filepath"
	"strings"
	"testing"

	"canonctl/internal/testutil"
)

func TestReadTotalMemory(t *testing.T) {
	original := meminfoPath
	defer func() { meminfoPath = original }()

	t.Run("parses MemTotal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meminfo")
		testutil.MustWriteFile(t, path, "MemTotal:       16384000 kB\nMemFree:        1234 kB\n")
		meminfoPath = path

		got, err := readTotalMemory()
		if err != nil {
			t.Fatalf("readTotalMemory() returned error: %v", err)
		}
		if want := uint64(16384000) * 1024; got != want {
			t.Errorf("readTotalMemory() = %d, want %d", got, want)
		}
	})

	t.Run("missing MemTotal", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meminfo")
		testutil.MustWriteFile(t, path, "MemFree:        1234 kB\n")
		meminfoPath = path

		_, err := readTotalMemory()
		if err == nil {
			t.Fatal("expected error when MemTotal is missing")
		}
		if !strings.Contains(err.Error(), "MemTotal") {
			t.Errorf("error should mention MemTotal: %v", err)
		}
	})

	t.Run("malformed value", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meminfo")
		testutil.MustWriteFile(t, path, "MemTotal:       lots kB\n")
		meminfoPath = path

		if _, err := readTotalMemory(); err == nil {
			t.Fatal("expected error for malformed MemTotal value")
		}
	})

	t.Run("real meminfo", func(t *testing.T) {
		meminfoPath = "/proc/meminfo"
		got, err := readTotalMemory()
		if err != nil {
			t.Skipf("/proc/meminfo not readable: %v", err)
		}
		if got == 0 {
			t.Error("readTotalMemory() = 0 from real /proc/meminfo")
		}
	})
}
