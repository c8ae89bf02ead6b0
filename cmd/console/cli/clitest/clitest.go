// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package clitest runs console commands against a fake backend.
//
// A [Harness] starts a [roomtest.Server], points a fresh state
// directory's settings at it, and captures stdout and stderr, so
// command tests read like an operator session:
//
//	harness := clitest.New(t, "sentient-tech", "technician")
//	harness.SignIn(t, "admin", session.RoleAdmin)
//	err := harness.Run(usercmd.Command(harness.Runtime), "list")
package clitest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/roomtest"
	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/settings"
)

// Epoch is the harness clock's starting time.
var Epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Harness is one console wired to a fake backend.
type Harness struct {
	Server  *roomtest.Server
	Clock   *clock.FakeClock
	Runtime *cli.Runtime

	Directory string
	Stdout    bytes.Buffer
	Stderr    bytes.Buffer
	// Password is returned by the runtime's password prompt.
	Password string
}

var overrideVariables = []string{"SENTIENT_AUTH_URL", "SENTIENT_ROOM_API_URL", "SENTIENT_ROOM_ID"}

// New creates a harness whose saved settings point at a new fake
// backend. It clears the SENTIENT_* overrides for the test, so tests
// using it cannot run in parallel.
func New(t *testing.T, program, console string) *Harness {
	t.Helper()
	for _, variable := range overrideVariables {
		t.Setenv(variable, "")
	}
	t.Setenv("NO_COLOR", "1")

	fakeClock := clock.Fake(Epoch)
	server := roomtest.New(t, roomtest.Config{Clock: fakeClock})
	harness := &Harness{
		Server:    server,
		Clock:     fakeClock,
		Directory: t.TempDir(),
	}
	store := settings.NewStore(harness.Directory, nil)
	if err := store.Save(settings.Settings{
		AuthBaseURL:    server.URL,
		RoomAPIBaseURL: server.URL,
		RoomID:         server.RoomID(),
	}); err != nil {
		t.Fatalf("saving harness settings: %v", err)
	}

	harness.Runtime = &cli.Runtime{
		Console:        console,
		Program:        program,
		StateDirectory: harness.Directory,
		HTTPClient:     server.HTTPClient(),
		Clock:          fakeClock,
		Stdin:          bytes.NewReader(nil),
		Stdout:         &harness.Stdout,
		Stderr:         &harness.Stderr,
		PromptPassword: func(string) (*secret.Buffer, error) {
			return secret.NewFromString(harness.Password)
		},
	}
	return harness
}

// SignIn stores a valid token for username without going through
// login.
func (h *Harness) SignIn(t *testing.T, username string, role session.Role) string {
	t.Helper()
	token := h.Server.IssueToken(username, role, roomtest.TokenLifetime)
	if err := session.NewFileTokenStore(h.Directory).Save(token); err != nil {
		t.Fatalf("storing token: %v", err)
	}
	return token
}

// StoredToken returns the token a fresh console would load.
func (h *Harness) StoredToken(t *testing.T) string {
	t.Helper()
	token, ok, err := session.NewFileTokenStore(h.Directory).Load()
	if err != nil {
		t.Fatalf("loading token: %v", err)
	}
	if !ok {
		return ""
	}
	return token
}

// Run clears the captured output and executes command with args. The
// returned error has been through [cli.Classify].
func (h *Harness) Run(command *cli.Command, args ...string) error {
	h.Stdout.Reset()
	h.Stderr.Reset()
	if command.HelpOutput == nil {
		command.HelpOutput = &h.Stderr
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return cli.Classify(command.Execute(context.Background(), args, logger), h.Runtime.Program)
}

// Category returns the category of a classified error, or "".
func Category(err error) cli.ErrorCategory {
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		return ""
	}
	return toolErr.Category
}
