// SPDX-License-Identifier: MPL-2.0

// Package hostinfo probes machine resources for computed placeholder values.
//
// The WSL sizing rules follow the canonical provisioning policy: a WSL VM
// gets half of physical RAM within 2..16 GiB, and 80% of logical cores but
// never fewer than 2.
package hostinfo

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
)

const (
	// MinMemoryGB is the floor for the WSL memory assignment.
	MinMemoryGB = 2
	// MaxMemoryGB is the ceiling for the WSL memory assignment.
	MaxMemoryGB = 16
	// MinProcessors is the floor for the WSL processor assignment.
	MinProcessors = 2

	gib = 1 << 30
)

// Info describes the machine resources relevant to placeholder resolution.
type Info struct {
	// TotalMemoryBytes is the physical RAM of the machine.
	TotalMemoryBytes uint64
	// LogicalCores is the number of logical CPUs.
	LogicalCores int
	// Hostname is the machine's host name.
	Hostname string
	// Username is the current user's login name.
	Username string
}

// totalMemory is the platform probe, overridable in tests.
var totalMemory = readTotalMemory

// Detect probes the current machine.
func Detect() (Info, error) {
	mem, err := totalMemory()
	if err != nil {
		return Info{}, fmt.Errorf("probing physical memory: %w", err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return Info{}, fmt.Errorf("probing hostname: %w", err)
	}

	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}

	return Info{
		TotalMemoryBytes: mem,
		LogicalCores:     runtime.NumCPU(),
		Hostname:         hostname,
		Username:         username,
	}, nil
}

// WSLMemoryGB computes the WSL memory assignment from physical RAM:
// half the total, in whole GiB, clamped to [MinMemoryGB, MaxMemoryGB].
func WSLMemoryGB(totalBytes uint64) int {
	half := int(totalBytes / (2 * gib))
	if half < MinMemoryGB {
		return MinMemoryGB
	}
	if half > MaxMemoryGB {
		return MaxMemoryGB
	}
	return half
}

// WSLProcessors computes the WSL processor assignment from the logical core
// count: 80% rounded down, but never fewer than MinProcessors.
func WSLProcessors(logicalCores int) int {
	procs := logicalCores * 80 / 100
	if procs < MinProcessors {
		return MinProcessors
	}
	return procs
}
