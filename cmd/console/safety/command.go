// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package safety implements the technician's "safety" commands: the
// two-step safety reset, either interactively or as separate request
// and confirm steps.
package safety

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/resetui"
	"github.com/sentient-engine/consoles/lib/safetyreset"
)

// Command returns the "safety" command group.
func Command(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "safety",
		Summary: "Request and confirm safety resets",
		Description: `A safety reset takes two steps. "request" asks the room for a reset
and returns a reset id valid for a short window (60 seconds unless the
room says otherwise). "confirm" sends that id back. The room refuses the
request while any device is not SAFE, and refuses a confirm whose id has
expired or was already used.

"reset" runs both steps in one interactive dialog.`,
		Subcommands: []*cli.Command{
			requestCommand(runtime),
			confirmCommand(runtime),
			resetCommand(runtime),
		},
	}
}

type requestParams struct {
	cli.JSONOutput
	Reason string `json:"reason" flag:"reason" desc:"reason recorded with the reset" default:"tech console request"`
}

type requestOutput struct {
	ResetID   string    `json:"reset_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func requestCommand(runtime *cli.Runtime) *cli.Command {
	var params requestParams
	return &cli.Command{
		Name:    "request",
		Summary: "Ask the room for a safety reset",
		Usage:   fmt.Sprintf("%s safety request [flags]", runtime.Program),
		Examples: []cli.Example{
			{
				Description: "Request a reset, then confirm it",
				Command:     fmt.Sprintf("%[1]s safety request --reason 'puzzle 3 jammed' && %[1]s safety confirm <reset-id>", runtime.Program),
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			handle, err := environment.SafetyReset().Request(ctx, params.Reason)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(environment.Stdout, requestOutput{ResetID: handle.ResetID, ExpiresAt: handle.ExpiresAt}); done {
				return err
			}
			environment.Printf("Reset %s requested. Confirm before %s with:\n  %s safety confirm %s\n",
				handle.ResetID, handle.ExpiresAt.Local().Format(cli.TimeLayout), environment.Program, handle.ResetID)
			return nil
		},
	}
}

func confirmCommand(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "confirm",
		Summary: "Confirm a requested safety reset",
		Description: `Send a reset id back to the room. The id is sent even if this
machine's clock says the window has passed; the room decides whether it
is still valid.`,
		Usage: fmt.Sprintf("%s safety confirm <reset-id>", runtime.Program),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("confirm takes exactly one argument: the reset id from 'safety request'")
			}
			resetID := strings.TrimSpace(args[0])
			if _, err := uuid.Parse(resetID); err != nil {
				return cli.Validation("invalid reset id %q: %w", resetID, err)
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			if err := environment.SafetyReset().Confirm(ctx, safetyreset.Handle{ResetID: resetID}); err != nil {
				return err
			}
			environment.Printf("Reset %s confirmed by room %s.\n", resetID, environment.Settings.RoomID)
			return nil
		},
	}
}

type resetParams struct {
	Reason string `json:"reason" flag:"reason" desc:"reason recorded with the reset" default:"tech console request"`
}

func resetCommand(runtime *cli.Runtime) *cli.Command {
	var params resetParams
	return &cli.Command{
		Name:    "reset",
		Summary: "Request and confirm a safety reset interactively",
		Description: `Request a reset, then show a countdown to the room's expiry. Press y
or enter to confirm, q or esc to abandon. Confirming after the countdown
ends is still allowed; the room decides whether the reset is valid.`,
		Usage:  fmt.Sprintf("%s safety reset [flags]", runtime.Program),
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			input, ok := environment.Stdin.(*os.File)
			if !ok || !term.IsTerminal(int(input.Fd())) {
				return cli.Validation("safety reset needs a terminal").
					WithHint(fmt.Sprintf("Use '%[1]s safety request' and '%[1]s safety confirm <reset-id>' from scripts.", environment.Program))
			}

			result, err := resetui.Run(resetui.Config{
				Workflow: environment.SafetyReset(),
				Reason:   params.Reason,
				Context:  ctx,
				Clock:    environment.Clock,
			}, tea.WithContext(ctx), tea.WithInput(input), tea.WithOutput(environment.Stderr))
			if err != nil {
				return cli.Internal("%w", err)
			}
			return report(environment, result)
		},
	}
}

func report(environment *cli.Environment, result resetui.Result) error {
	switch result.Phase {
	case resetui.PhaseConfirmed:
		environment.Printf("Reset %s confirmed by room %s.\n", result.Handle.ResetID, environment.Settings.RoomID)
		return nil
	case resetui.PhaseFailed:
		return result.Err
	case resetui.PhaseInterrupted:
		environment.Printf("Interrupted while confirming reset %s; the room may already have accepted it. Run '%s status' to check.\n",
			result.Handle.ResetID, environment.Program)
		return &cli.ExitError{Code: 1}
	}
	if result.HasHandle {
		environment.Printf("Abandoned; reset %s was not confirmed.\n", result.Handle.ResetID)
	} else {
		environment.Printf("Abandoned before the room answered.\n")
	}
	return &cli.ExitError{Code: 1}
}
