// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the command tree of each console binary
// and runs it. The three consoles share the cli framework and the
// login, settings, and status commands; each adds the groups for its
// operators.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	dispatchcmd "github.com/sentient-engine/consoles/cmd/console/dispatch"
	graphcmd "github.com/sentient-engine/consoles/cmd/console/graph"
	safetycmd "github.com/sentient-engine/consoles/cmd/console/safety"
	settingscmd "github.com/sentient-engine/consoles/cmd/console/settings"
	statuscmd "github.com/sentient-engine/consoles/cmd/console/status"
	usercmd "github.com/sentient-engine/consoles/cmd/console/user"
	"github.com/sentient-engine/consoles/lib/version"
)

// Console names, which are also the state directory names.
const (
	CreativeConsole   = "creative"
	GamemasterConsole = "gamemaster"
	TechConsole       = "technician"
)

// Creative builds the sentient-creative tree.
func Creative(runtime *cli.Runtime) *cli.Command {
	return root(runtime, `Sentient creative console: author and activate behaviour graphs.

Sign in, upload graph documents for the room, and choose which version
the room core runs after its next restart.`,
		graphcmd.Command(runtime),
	)
}

// Gamemaster builds the sentient-gm tree.
func Gamemaster(runtime *cli.Runtime) *cli.Command {
	return root(runtime, `Sentient gamemaster console: watch and steer a live room.

Sign in, follow the room core's status, and pause or resume the
dispatcher during a show.`,
		dispatchcmd.Command(runtime),
	)
}

// Technician builds the sentient-tech tree.
func Technician(runtime *cli.Runtime) *cli.Command {
	return root(runtime, `Sentient technician console: room safety and operator accounts.

Sign in, check the room core's status, run the two-step safety reset,
and (with an ADMIN account) manage operator accounts.`,
		safetycmd.Command(runtime),
		usercmd.Command(runtime),
	)
}

func root(runtime *cli.Runtime, description string, groups ...*cli.Command) *cli.Command {
	subcommands := []*cli.Command{
		cli.LoginCommand(runtime),
		cli.LogoutCommand(runtime),
		cli.WhoAmICommand(runtime),
		settingscmd.Command(runtime),
		statuscmd.Command(runtime),
	}
	subcommands = append(subcommands, groups...)
	subcommands = append(subcommands, versionCommand(runtime))
	return &cli.Command{
		Name:        runtime.Program,
		Description: description,
		Subcommands: subcommands,
	}
}

func versionCommand(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			stdout := runtime.Stdout
			if stdout == nil {
				stdout = os.Stdout
			}
			_, err := fmt.Fprintf(stdout, "%s %s\n", runtime.Program, version.Full())
			return err
		},
	}
}

// Main runs the console built by build with the process arguments and
// returns the exit code. SIGINT and SIGTERM cancel the command's
// context.
func Main(console, program string, build func(*cli.Runtime) *cli.Command) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime := &cli.Runtime{Console: console, Program: program}
	err := build(runtime).Execute(ctx, os.Args[1:], cli.NewCommandLogger())
	return exitCode(os.Stderr, cli.Classify(err, program))
}

// exitCode reports err on stderr and maps it to an exit status.
// Commands that already printed their outcome return *cli.ExitError,
// which is not printed again.
func exitCode(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}
