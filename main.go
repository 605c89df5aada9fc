// SPDX-License-Identifier: MPL-2.0

package main

import cmd "canonctl/cmd/canonctl"

func main() {
	cmd.Execute()
}
