// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/settings"
)

// TimeLayout is how the consoles print instants.
const TimeLayout = "2006-01-02 15:04:05 MST"

// loginParams holds the parameters for the login command.
type loginParams struct {
	JSONOutput
	PasswordFile string `json:"-" flag:"password-file" desc:"file holding the password, or - for the first line of stdin (default: prompt)"`
}

// LoginCommand returns the "login" command.
func LoginCommand(runtime *Runtime) *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Sign in to the auth service",
		Description: `Sign in and keep the access token for later commands.

The token is encrypted to a key that only this console installation
holds and is stored in the console's state directory. It is sent with
every later request until "logout" removes it or a new login replaces
it.

The password is prompted for without echo unless --password-file is
given.`,
		Usage: fmt.Sprintf("%s login <username> [flags]", runtime.Program),
		Examples: []Example{
			{
				Description: "Sign in interactively",
				Command:     runtime.Program + " login tech1",
			},
			{
				Description: "Sign in from a script",
				Command:     runtime.Program + " login tech1 --password-file ~/.sentient-password",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return Validation("login takes exactly one argument: the username")
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			return runLogin(ctx, environment, args[0], &params)
		},
	}
}

func runLogin(ctx context.Context, environment *Environment, username string, params *loginParams) error {
	var (
		password *secret.Buffer
		err      error
	)
	if params.PasswordFile != "" {
		password, err = secret.ReadFromPath(params.PasswordFile)
	} else {
		password, err = environment.PromptPassword(fmt.Sprintf("Password for %s: ", username))
	}
	if err != nil {
		return Validation("reading password: %w", err)
	}
	defer password.Close()

	if _, err := environment.Session.Login(ctx, environment.Settings.AuthBaseURL, username, password); err != nil {
		return err
	}

	output := identityFor(environment)
	if done, err := params.EmitJSON(environment.Stdout, output); done {
		return err
	}
	if !output.SignedIn {
		environment.Printf("Signed in as %s. The token carries no readable claims.\n", username)
		return nil
	}
	environment.Printf("Signed in as %s (%s).\n", output.Subject, output.Role)
	if output.ExpiresAt != nil {
		environment.Printf("Token expires %s.\n", output.ExpiresAt.Local().Format(TimeLayout))
	}
	return nil
}

// LogoutCommand returns the "logout" command.
func LogoutCommand(runtime *Runtime) *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored access token",
		Description: `Remove the stored access token. Running logout when already signed out
is not an error.`,
		Usage: fmt.Sprintf("%s logout", runtime.Program),
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			if err := environment.Session.Logout(); err != nil {
				return Internal("removing stored token: %w", err)
			}
			environment.Printf("Signed out.\n")
			return nil
		},
	}
}

// whoamiParams holds the parameters for the whoami command.
type whoamiParams struct {
	JSONOutput
}

// identity is the JSON output of whoami, and of login with --json.
type identity struct {
	SignedIn       bool              `json:"signed_in"`
	Subject        string            `json:"sub,omitempty"`
	Role           session.Role      `json:"role,omitempty"`
	IssuedAt       *time.Time        `json:"issued_at,omitempty"`
	ExpiresAt      *time.Time        `json:"expires_at,omitempty"`
	Expired        bool              `json:"expired"`
	Settings       settings.Settings `json:"settings"`
	StateDirectory string            `json:"state_directory"`
}

func identityFor(environment *Environment) identity {
	output := identity{
		Settings:       environment.Settings,
		StateDirectory: environment.Directory,
	}
	claims := environment.Session.Claims()
	if claims == nil {
		return output
	}
	output.SignedIn = true
	output.Subject = claims.Sub
	output.Role = claims.Role
	if issued := claims.IssuedAt(); !issued.IsZero() {
		output.IssuedAt = &issued
	}
	if expires := claims.ExpiresAt(); !expires.IsZero() {
		output.ExpiresAt = &expires
	}
	output.Expired = claims.Expired(environment.Clock.Now())
	return output
}

// WhoAmICommand returns the "whoami" command. It reads only local state.
func WhoAmICommand(runtime *Runtime) *Command {
	var params whoamiParams

	return &Command{
		Name:    "whoami",
		Summary: "Show the signed-in account and settings",
		Description: `Show the account the stored token names, its role and expiry, and
the settings this console uses. Nothing is sent to the network; the
expiry shown is what the token claims, and the server still decides
whether it is accepted.`,
		Usage:  fmt.Sprintf("%s whoami [flags]", runtime.Program),
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return Validation("unexpected argument: %s", args[0])
			}
			environment, err := runtime.Open(logger)
			if err != nil {
				return err
			}
			output := identityFor(environment)
			if done, err := params.EmitJSON(environment.Stdout, output); done {
				return err
			}
			printIdentity(environment, output)
			return nil
		},
	}
}

func printIdentity(environment *Environment, output identity) {
	if !output.SignedIn {
		if environment.Session.Token() != "" {
			environment.Printf("Signed in with a token whose claims cannot be read.\n")
		} else {
			environment.Printf("Not signed in.\n")
		}
	} else {
		environment.Printf("User:     %s\n", output.Subject)
		environment.Printf("Role:     %s\n", output.Role)
		if output.IssuedAt != nil {
			environment.Printf("Issued:   %s\n", output.IssuedAt.Local().Format(TimeLayout))
		}
		if output.ExpiresAt != nil {
			state := ""
			if output.Expired {
				state = " (expired)"
			}
			environment.Printf("Expires:  %s%s\n", output.ExpiresAt.Local().Format(TimeLayout), state)
		}
	}
	environment.Printf("\nAuth:     %s\n", output.Settings.AuthBaseURL)
	environment.Printf("Room API: %s\n", output.Settings.RoomAPIBaseURL)
	environment.Printf("Room:     %s\n", output.Settings.RoomID)
	environment.Printf("State:    %s\n", output.StateDirectory)
}
