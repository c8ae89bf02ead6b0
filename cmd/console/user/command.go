// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package user implements the technician's "user" commands for managing
// operator accounts on the auth service.
//
// The commands refuse to run unless the stored token claims the ADMIN
// role. That check only spares a round trip; the auth service makes the
// real decision.
package user

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/control"
	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
)

// Command returns the "user" command group.
func Command(runtime *cli.Runtime) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Summary: "Manage operator accounts (ADMIN only)",
		Description: `List, create, enable, and disable operator accounts, and reset their
passwords. Every change prints the refreshed account list.

Passwords are prompted for without echo unless --password-file is given.`,
		Subcommands: []*cli.Command{
			listCommand(runtime),
			createCommand(runtime),
			enableCommand(runtime, "enable", "Allow an account to sign in", true),
			enableCommand(runtime, "disable", "Stop an account from signing in", false),
			passwdCommand(runtime),
		},
	}
}

// openAdmin opens the console and checks the advisory ADMIN gate.
func openAdmin(runtime *cli.Runtime, logger *slog.Logger) (*cli.Environment, error) {
	environment, err := runtime.Open(logger)
	if err != nil {
		return nil, err
	}
	claims := environment.Session.Claims()
	if claims == nil {
		return nil, cli.Forbidden("not signed in").WithHint(environment.LoginHint())
	}
	if claims.Role != session.RoleAdmin {
		return nil, cli.Forbidden("account management needs the ADMIN role; %s is %s", claims.Sub, claims.Role).
			WithHint(fmt.Sprintf("Sign in with an ADMIN account: '%s login <admin-username>'.", environment.Program))
	}
	return environment, nil
}

type listParams struct {
	cli.JSONOutput
}

func listCommand(runtime *cli.Runtime) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List operator accounts",
		Usage:   fmt.Sprintf("%s user list [flags]", runtime.Program),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			environment, err := openAdmin(runtime, logger)
			if err != nil {
				return err
			}
			users, err := environment.Control().ListUsers(ctx)
			if err != nil {
				return err
			}
			return emitUsers(environment, &params.JSONOutput, users)
		},
	}
}

type createParams struct {
	cli.JSONOutput
	Role         string `json:"role" flag:"role" desc:"role for the new account: ADMIN, TECH, GM, or VIEWER" default:"TECH"`
	PasswordFile string `json:"-" flag:"password-file" desc:"file holding the password, or - for the first line of stdin (default: prompt)"`
}

func createCommand(runtime *cli.Runtime) *cli.Command {
	var params createParams
	return &cli.Command{
		Name:    "create",
		Summary: "Create an operator account",
		Usage:   fmt.Sprintf("%s user create <username> [flags]", runtime.Program),
		Examples: []cli.Example{
			{
				Description: "Create a gamemaster account",
				Command:     runtime.Program + " user create gm2 --role GM",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("create takes exactly one argument: the username")
			}
			role, err := session.ParseRole(params.Role)
			if err != nil {
				return cli.Validation("%w", err)
			}
			environment, err := openAdmin(runtime, logger)
			if err != nil {
				return err
			}
			password, err := readPassword(environment, params.PasswordFile, fmt.Sprintf("Password for new account %s: ", args[0]))
			if err != nil {
				return err
			}
			defer password.Close()

			users, err := environment.Control().CreateUser(ctx, control.NewUser{Username: args[0], Password: password, Role: role})
			return reportChange(environment, &params.JSONOutput, users, err, fmt.Sprintf("Created %s (%s).", args[0], role))
		},
	}
}

func enableCommand(runtime *cli.Runtime, name, summary string, enabled bool) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    name,
		Summary: summary,
		Usage:   fmt.Sprintf("%s user %s <username> [flags]", runtime.Program, name),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("%s takes exactly one argument: the username", name)
			}
			environment, err := openAdmin(runtime, logger)
			if err != nil {
				return err
			}
			users, err := environment.Control().SetUserEnabled(ctx, args[0], enabled)
			return reportChange(environment, &params.JSONOutput, users, err, fmt.Sprintf("%s is now %s.", args[0], enabledWord(enabled)))
		},
	}
}

type passwdParams struct {
	cli.JSONOutput
	PasswordFile string `json:"-" flag:"password-file" desc:"file holding the new password, or - for the first line of stdin (default: prompt)"`
}

func passwdCommand(runtime *cli.Runtime) *cli.Command {
	var params passwdParams
	return &cli.Command{
		Name:    "passwd",
		Summary: "Set a new password for an account",
		Usage:   fmt.Sprintf("%s user passwd <username> [flags]", runtime.Program),
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("passwd takes exactly one argument: the username")
			}
			environment, err := openAdmin(runtime, logger)
			if err != nil {
				return err
			}
			password, err := readPassword(environment, params.PasswordFile, fmt.Sprintf("New password for %s: ", args[0]))
			if err != nil {
				return err
			}
			defer password.Close()

			users, err := environment.Control().ResetUserPassword(ctx, args[0], password)
			return reportChange(environment, &params.JSONOutput, users, err, fmt.Sprintf("Password for %s changed.", args[0]))
		},
	}
}

func readPassword(environment *cli.Environment, path, prompt string) (*secret.Buffer, error) {
	var (
		password *secret.Buffer
		err      error
	)
	if path != "" {
		password, err = secret.ReadFromPath(path)
	} else {
		password, err = environment.PromptPassword(prompt)
	}
	if err != nil {
		return nil, cli.Validation("reading password: %w", err)
	}
	return password, nil
}

// reportChange prints the outcome of a mutation. A failed refresh
// still reports the change, then returns the refresh error.
func reportChange(environment *cli.Environment, output *cli.JSONOutput, users []control.User, err error, message string) error {
	if err != nil && !control.IsRefreshError(err) {
		return err
	}
	if output.OutputJSON {
		if err != nil {
			return err
		}
		_, jsonErr := output.EmitJSON(environment.Stdout, users)
		return jsonErr
	}
	environment.Printf("%s\n", message)
	if err != nil {
		return err
	}
	environment.Printf("\n")
	return printUsers(environment.Stdout, users)
}

func emitUsers(environment *cli.Environment, output *cli.JSONOutput, users []control.User) error {
	if done, err := output.EmitJSON(environment.Stdout, users); done {
		return err
	}
	return printUsers(environment.Stdout, users)
}

func printUsers(w io.Writer, users []control.User) error {
	if len(users) == 0 {
		_, err := fmt.Fprintln(w, "No accounts.")
		return err
	}
	tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tROLE\tSTATE\tCREATED")
	for _, account := range users {
		created := "-"
		if at := account.CreatedAt(); !at.IsZero() {
			created = at.Local().Format(cli.TimeLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", account.Username, account.Role, enabledWord(account.Enabled), created)
	}
	return tw.Flush()
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
