// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"tessera/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
