// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func execute(command *Command, args ...string) error {
	return command.Execute(context.Background(), args, discardLogger)
}

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	root := &Command{
		Name:       "sentient-gm",
		HelpOutput: io.Discard,
		Subcommands: []*Command{
			{Name: "status", Run: func(context.Context, []string, *slog.Logger) error { called = "status"; return nil }},
			{Name: "dispatch", Run: func(context.Context, []string, *slog.Logger) error { called = "dispatch"; return nil }},
		},
	}
	if err := execute(root, "dispatch"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "dispatch" {
		t.Errorf("dispatched to %q, want dispatch", called)
	}
}

func TestCommand_Execute_NestedSubcommandsAndArgs(t *testing.T) {
	var received []string
	root := &Command{
		Name: "sentient-creative",
		Subcommands: []*Command{{
			Name: "graph",
			Subcommands: []*Command{{
				Name: "activate",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					received = args
					return nil
				},
			}},
		}},
	}
	if err := execute(root, "graph", "activate", "7"); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(received) != 1 || received[0] != "7" {
		t.Errorf("args = %v, want [7]", received)
	}
}

func TestCommand_Execute_ParamsBecomeFlags(t *testing.T) {
	var params struct {
		JSONOutput
		Reason string `flag:"reason" desc:"why" default:"tech console request"`
	}
	var gotReason string
	var gotJSON bool
	command := &Command{
		Name:   "request",
		Params: func() any { return &params },
		Run: func(context.Context, []string, *slog.Logger) error {
			gotReason, gotJSON = params.Reason, params.OutputJSON
			return nil
		},
	}

	if err := execute(command); err != nil {
		t.Fatal(err)
	}
	if gotReason != "tech console request" || gotJSON {
		t.Errorf("defaults: reason=%q json=%v", gotReason, gotJSON)
	}
	if err := execute(command, "--reason", "props jammed", "--json"); err != nil {
		t.Fatal(err)
	}
	if gotReason != "props jammed" || !gotJSON {
		t.Errorf("parsed: reason=%q json=%v", gotReason, gotJSON)
	}
}

func TestCommand_Execute_LoggerScopedWithCommandPath(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	root := &Command{
		Name: "sentient-tech",
		Subcommands: []*Command{{
			Name: "safety",
			Subcommands: []*Command{{
				Name: "request",
				Run: func(_ context.Context, _ []string, logger *slog.Logger) error {
					logger.Info("hello")
					return nil
				},
			}},
		}},
	}
	if err := root.Execute(context.Background(), []string{"safety", "request"}, logger); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "command=safety/request") {
		t.Errorf("log = %q, want command=safety/request", logs.String())
	}
}

func TestCommand_Execute_UnknownFlagSuggestion(t *testing.T) {
	var params struct {
		PasswordFile string `flag:"password-file"`
	}
	command := &Command{
		Name:   "login",
		Params: func() any { return &params },
		Run:    func(context.Context, []string, *slog.Logger) error { return nil },
	}
	err := execute(command, "--pasword-file", "x")
	if err == nil {
		t.Fatal("expected error")
	}
	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != CategoryValidation {
		t.Fatalf("err = %#v, want validation ToolError", err)
	}
	if !strings.Contains(err.Error(), "did you mean --password-file?") {
		t.Errorf("error = %q, want a suggestion", err)
	}
	if !strings.Contains(err.Error(), "Run 'login --help'") {
		t.Errorf("error = %q, want a help hint", err)
	}
}

func TestCommand_Execute_UnknownSubcommandSuggestion(t *testing.T) {
	root := &Command{
		Name:        "sentient-tech",
		Subcommands: []*Command{{Name: "safety"}, {Name: "settings"}, {Name: "status"}},
	}
	err := execute(root, "safty")
	if err == nil || !strings.Contains(err.Error(), `did you mean "safety"?`) {
		t.Errorf("error = %v, want suggestion for safety", err)
	}
	err = execute(root, "zzzzzzzz")
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("error = %v, want no suggestion", err)
	}
}

func TestCommand_Execute_HelpFlag(t *testing.T) {
	var help bytes.Buffer
	ran := false
	command := &Command{
		Name:       "status",
		Summary:    "Show the room status",
		HelpOutput: &help,
		Run:        func(context.Context, []string, *slog.Logger) error { ran = true; return nil },
	}
	for _, flag := range []string{"--help", "-h", "help"} {
		help.Reset()
		if err := execute(command, flag); err != nil {
			t.Errorf("%s: error %v", flag, err)
		}
		if ran {
			t.Errorf("%s: Run was called", flag)
		}
		if !strings.Contains(help.String(), "Show the room status") {
			t.Errorf("%s: help = %q", flag, help.String())
		}
	}
}

func TestCommand_Execute_GroupWithoutSubcommand(t *testing.T) {
	var help bytes.Buffer
	group := &Command{
		Name:        "graph",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "list", Summary: "List graph versions"}},
	}
	err := execute(group)
	if err == nil || !strings.Contains(err.Error(), "subcommand required") {
		t.Errorf("error = %v, want subcommand required", err)
	}
	if !strings.Contains(help.String(), "List graph versions") {
		t.Errorf("help = %q, want the subcommand listing", help.String())
	}
}

func TestCommand_HelpOutputInherited(t *testing.T) {
	var help bytes.Buffer
	leaf := &Command{Name: "upload", Summary: "Upload a graph", Run: func(context.Context, []string, *slog.Logger) error { return nil }}
	root := &Command{
		Name:        "sentient-creative",
		HelpOutput:  &help,
		Subcommands: []*Command{{Name: "graph", Subcommands: []*Command{leaf}}},
	}
	if err := execute(root, "graph", "upload", "--help"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(help.String(), "Upload a graph") {
		t.Errorf("help = %q", help.String())
	}
}

func TestCommand_PrintHelp(t *testing.T) {
	var params struct {
		Room string `flag:"room" desc:"room id"`
	}
	command := &Command{
		Name:        "set",
		Description: "Change saved settings.",
		Usage:       "sentient-gm settings set [flags]",
		Params:      func() any { return &params },
		Examples:    []Example{{Description: "Point at another room", Command: "sentient-gm settings set --room vault"}},
	}
	var help bytes.Buffer
	command.PrintHelp(&help)
	for _, want := range []string{"Change saved settings.", "Usage:\n  sentient-gm settings set [flags]", "--room", "room id", "# Point at another room"} {
		if !strings.Contains(help.String(), want) {
			t.Errorf("help missing %q:\n%s", want, help.String())
		}
	}
}

func TestCommand_FullNameAndPath(t *testing.T) {
	root := &Command{Name: "sentient-tech"}
	group := &Command{Name: "safety", parent: root}
	leaf := &Command{Name: "confirm", parent: group}
	if got := leaf.fullName(); got != "sentient-tech safety confirm" {
		t.Errorf("fullName = %q", got)
	}
	if got := leaf.path(); got != "safety/confirm" {
		t.Errorf("path = %q", got)
	}
	if got := root.path(); got != "sentient-tech" {
		t.Errorf("root path = %q", got)
	}
}
