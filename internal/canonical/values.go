// SPDX-License-Identifier: MPL-2.0

package canonical

import (
	"strconv"

	"canonctl/internal/hostinfo"
)

// Built-in placeholder names.
const (
	PlaceholderMemoryGB   = "WSL_MEMORY_GB"
	PlaceholderProcessors = "WSL_PROCESSORS"
	PlaceholderHostname   = "HOSTNAME"
	PlaceholderUsername   = "USERNAME"
)

// Values builds the placeholder value set for this machine: the computed
// WSL sizing values and identity placeholders, with user-defined custom
// values merged on top (custom values win on collision).
func Values(info hostinfo.Info, custom map[string]string) map[string]string {
	values := map[string]string{
		PlaceholderMemoryGB:   strconv.Itoa(hostinfo.WSLMemoryGB(info.TotalMemoryBytes)),
		PlaceholderProcessors: strconv.Itoa(hostinfo.WSLProcessors(info.LogicalCores)),
		PlaceholderHostname:   info.Hostname,
		PlaceholderUsername:   info.Username,
	}

	for name, value := range custom {
		values[name] = value
	}

	return values
}
