// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Command sentient-gm is the Sentient gamemaster console for running shows.
package main

import (
	"os"

	"github.com/sentient-engine/consoles/cmd/console/commands"
)

func main() {
	os.Exit(commands.Main(commands.GamemasterConsole, "sentient-gm", commands.Gamemaster))
}
