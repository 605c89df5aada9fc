// SPDX-License-Identifier: MPL-2.0

package hostinfo

import "golang.org/x/sys/unix"

// readTotalMemory queries the hw.memsize sysctl for the physical RAM size.
func readTotalMemory() (uint64, error) {
	return unix.SysctlUint64("hw.memsize")
}
