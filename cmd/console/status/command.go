// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package status implements the "status" command, which prints the room
// core's status snapshot.
package status

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentient-engine/consoles/cmd/console/cli"
)

type statusParams struct {
	cli.JSONOutput
}

// Command returns the "status" command.
func Command(runtime *cli.Runtime) *cli.Command {
	var params statusParams
	return &cli.Command{
		Name:    "status",
		Summary: "Show the room core's status snapshot",
		Description: `Fetch the room core's status snapshot and print it.

The snapshot is shown as the room reports it. On a colour terminal it
is indented and highlighted; with --json it is written exactly as
received, for scripts.`,
		Usage:  fmt.Sprintf("%s status [flags]", runtime.Program),
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			snapshot, err := environment.Control().RefreshStatus(ctx)
			if err != nil {
				return err
			}
			if params.OutputJSON {
				_, err := fmt.Fprintf(environment.Stdout, "%s\n", snapshot.Raw)
				return err
			}
			return cli.WriteJSONDocument(environment.Stdout, snapshot.Indented())
		},
	}
}
