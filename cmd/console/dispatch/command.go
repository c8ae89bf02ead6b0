// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package dispatch implements the gamemaster's "dispatch" commands,
// which pause and resume the room's dispatcher.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/control"
)

// Command returns the "dispatch" command group.
func Command(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "dispatch",
		Summary: "Pause or resume the room's dispatcher",
		Description: `Pause or resume dispatching in the room.

The room accepts the request and applies it itself; run "status" to see
the dispatcher's state once it has.`,
		Subcommands: []*cli.Command{
			opCommand(runtime, "pause", "Stop dispatching new actions", control.OpPauseDispatch),
			opCommand(runtime, "resume", "Resume dispatching", control.OpResumeDispatch),
			sendCommand(runtime),
		},
	}
}

func opCommand(runtime *cli.Runtime, name, summary string, op control.ControlOp) *cli.Command {
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("%s dispatch %s", runtime.Program, name),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return send(ctx, runtime, logger, op)
		},
	}
}

func sendCommand(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "send",
		Summary: "Send a control operation by name",
		Usage:   fmt.Sprintf("%s dispatch send <PAUSE_DISPATCH|RESUME_DISPATCH>", runtime.Program),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("send takes exactly one argument: the operation")
			}
			op, err := control.ParseControlOp(args[0])
			if err != nil {
				return err
			}
			return send(ctx, runtime, logger, op)
		},
	}
}

func send(ctx context.Context, runtime *cli.Runtime, logger *slog.Logger, op control.ControlOp) error {
	environment, err := runtime.Open(logger)
	if err != nil {
		return err
	}
	if err := environment.Control().SendControl(ctx, op); err != nil {
		return err
	}
	environment.Printf("%s accepted by room %s. Run '%s status' to see when it takes effect.\n",
		op, environment.Settings.RoomID, environment.Program)
	return nil
}
