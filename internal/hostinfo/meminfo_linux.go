// SPDX-License-Identifier: MPL-2.0

package hostinfo

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// meminfoPath is a var so tests can point at a fixture file.
var meminfoPath = "/proc/meminfo"

// readTotalMemory reads MemTotal from /proc/meminfo. The kernel reports the
// value in KiB regardless of the "kB" unit suffix.
func readTotalMemory() (uint64, error) {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0, fmt.Errorf("malformed MemTotal line: %q", line)
		}

		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("malformed MemTotal value: %q", fields[1])
		}
		return kb * 1024, nil
	}

	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("reading %s: %w", meminfoPath, err)
	}
	return 0, fmt.Errorf("MemTotal not found in %s", meminfoPath)
}
