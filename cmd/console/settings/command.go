// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings implements the "settings" command group: viewing and
// changing the endpoints a console talks to.
package settings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/settings"
)

// Command returns the "settings" command group.
func Command(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "settings",
		Summary: "Show or change the auth, room API, and room settings",
		Description: `Show or change where this console connects.

Settings are saved per console in the state directory. The
SENTIENT_AUTH_URL, SENTIENT_ROOM_API_URL, and SENTIENT_ROOM_ID
environment variables override them for one invocation without
changing the file.`,
		Subcommands: []*cli.Command{
			showCommand(runtime),
			setCommand(runtime),
			resetCommand(runtime),
		},
	}
}

type showParams struct {
	cli.JSONOutput
}

type showOutput struct {
	Path      string            `json:"path"`
	Saved     settings.Settings `json:"saved"`
	Effective settings.Settings `json:"effective"`
}

func showCommand(runtime *cli.Runtime) *cli.Command {
	var params showParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show saved and effective settings",
		Usage:   fmt.Sprintf("%s settings show [flags]", runtime.Program),
		Params:  func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			output := showOutput{
				Path:      environment.SettingsStore.Path(),
				Saved:     environment.SettingsStore.Load(),
				Effective: environment.Settings,
			}
			if done, err := params.EmitJSON(environment.Stdout, output); done {
				return err
			}
			printSettings(environment, output.Effective, output.Saved)
			environment.Printf("\nFile: %s\n", output.Path)
			return nil
		},
	}
}

func printSettings(environment *cli.Environment, effective, saved settings.Settings) {
	line := func(label, value, savedValue string) {
		if value != savedValue {
			environment.Printf("%-18s %s (environment; saved: %s)\n", label, value, savedValue)
			return
		}
		environment.Printf("%-18s %s\n", label, value)
	}
	line("auth_base_url:", effective.AuthBaseURL, saved.AuthBaseURL)
	line("room_api_base_url:", effective.RoomAPIBaseURL, saved.RoomAPIBaseURL)
	line("room_id:", effective.RoomID, saved.RoomID)
}

type setParams struct {
	AuthURL    string `json:"auth_url"     flag:"auth-url"     desc:"auth service base URL"`
	RoomAPIURL string `json:"room_api_url" flag:"room-api-url" desc:"room API base URL"`
	Room       string `json:"room"         flag:"room"         desc:"room id"`
}

func setCommand(runtime *cli.Runtime) *cli.Command {
	var params setParams
	return &cli.Command{
		Name:    "set",
		Summary: "Change saved settings",
		Description: `Change one or more saved settings. Flags that are not given keep their
saved value. The result is validated before it is written: both URLs
must be absolute http or https URLs and the room must not be empty.`,
		Usage: fmt.Sprintf("%s settings set [--auth-url URL] [--room-api-url URL] [--room ID]", runtime.Program),
		Examples: []cli.Example{
			{
				Description: "Point the console at a staging room",
				Command:     runtime.Program + " settings set --room-api-url https://api.staging.sentientengine.ai --room vault",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.AuthURL == "" && params.RoomAPIURL == "" && params.Room == "" {
				return cli.Validation("nothing to change").
					WithHint("Pass at least one of --auth-url, --room-api-url, or --room.")
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}

			updated := environment.SettingsStore.Load()
			if params.AuthURL != "" {
				updated.AuthBaseURL = params.AuthURL
			}
			if params.RoomAPIURL != "" {
				updated.RoomAPIBaseURL = params.RoomAPIURL
			}
			if params.Room != "" {
				updated.RoomID = params.Room
			}
			updated = updated.WithDefaults()
			if err := updated.Validate(); err != nil {
				return cli.Validation("invalid settings: %w", err)
			}
			if err := environment.SettingsStore.Save(updated); err != nil {
				return cli.Internal("saving settings: %w", err)
			}
			logger.Info("settings saved", "path", environment.SettingsStore.Path())
			printSettings(environment, updated, updated)
			return nil
		},
	}
}

func resetCommand(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "reset",
		Summary: "Restore the default settings",
		Usage:   fmt.Sprintf("%s settings reset", runtime.Program),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			defaults := settings.Defaults()
			if err := environment.SettingsStore.Save(defaults); err != nil {
				return cli.Internal("saving settings: %w", err)
			}
			printSettings(environment, defaults, defaults)
			return nil
		},
	}
}
