// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Command sentient-creative is the Sentient creative console for behaviour graph authors.
package main

import (
	"os"

	"github.com/sentient-engine/consoles/cmd/console/commands"
)

func main() {
	os.Exit(commands.Main(commands.CreativeConsole, "sentient-creative", commands.Creative))
}
