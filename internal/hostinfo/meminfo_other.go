// SPDX-License-Identifier: MPL-2.0

//go:build !linux && !windows && !darwin

package hostinfo

import "errors"

func readTotalMemory() (uint64, error) {
	return 0, errors.New("physical memory probing is not supported on this platform")
}
