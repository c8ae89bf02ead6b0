// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework shared by the three
// Sentient operator consoles.
//
// The central type is [Command], a named command with optional nested
// [Command.Subcommands], parameters bound to flags through struct tags
// (see [BindFlags]), and a Run function. Each console binary assembles
// its own tree in cmd/console/commands and dispatches it with
// [Command.Execute], which handles flag parsing, subcommand routing,
// and help output. Unknown commands and flags get a Levenshtein
// suggestion.
//
// [Runtime] describes where a console keeps its state and which
// terminal it talks to. [Runtime.Open] loads the persisted settings
// and session and returns an [Environment] that command groups use to
// reach the room API.
//
// Errors returned by Run are classified into [ToolError] categories by
// [Classify] before they are printed, so operators see a consistent
// message and, where one exists, a hint about what to do next.
//
// The login, logout, and whoami commands live here because every
// console carries them.
package cli
