// SPDX-License-Identifier: MPL-2.0

// scripthook loads shell, Lua and Go scripts and dispatches their lifecycle hooks.
package main

import cmd "github.com/scripthook/scripthook/cmd/scripthook"

func main() {
	cmd.Execute()
}
