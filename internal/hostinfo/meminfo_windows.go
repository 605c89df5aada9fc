// SPDX-License-Identifier: MPL-2.0

package hostinfo

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// readTotalMemory queries GlobalMemoryStatusEx for the physical RAM size.
func readTotalMemory() (uint64, error) {
	var status windows.MemoryStatusEx
	status.Length = uint32(unsafe.Sizeof(status))

	if err := windows.GlobalMemoryStatusEx(&status); err != nil {
		return 0, err
	}
	return status.TotalPhys, nil
}
