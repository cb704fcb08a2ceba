// SPDX-License-Identifier: MPL-2.0

package main

import cmd "dsw-cli/cmd/dsw"

func main() {
	cmd.Execute()
}
