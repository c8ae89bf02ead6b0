// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Command sentient-tech is the Sentient technician console for room safety and operator accounts.
package main

import (
	"os"

	"github.com/sentient-engine/consoles/cmd/console/commands"
)

func main() {
	os.Exit(commands.Main(commands.TechConsole, "sentient-tech", commands.Technician))
}
