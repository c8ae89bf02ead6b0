// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/control"
	"github.com/sentient-engine/consoles/lib/safetyreset"
	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/settings"
	"github.com/sentient-engine/consoles/lib/version"
	"github.com/sentient-engine/consoles/roomapi"
)

// Runtime describes one console's state location and terminal. The
// zero value of every field except Console and Program has a working
// default.
type Runtime struct {
	// Console names the state directory (creative, gamemaster, or
	// technician).
	Console string

	// Program is the binary name used in hints (e.g., "sentient-tech").
	Program string

	// StateDirectory overrides [settings.StateDirectory].
	StateDirectory string

	HTTPClient *http.Client
	Clock      clock.Clock

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// PromptPassword reads a password without echo. Defaults to a
	// prompt on the controlling terminal.
	PromptPassword func(prompt string) (*secret.Buffer, error)
}

// Environment is an opened console: persisted settings with the
// environment overrides applied, and the adopted session.
type Environment struct {
	Program   string
	Directory string

	SettingsStore *settings.Store
	// Settings is what this invocation uses. It may differ from the
	// file when SENTIENT_* overrides are set.
	Settings settings.Settings

	Session *session.Manager
	Client  *roomapi.Client
	Clock   clock.Clock

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	PromptPassword func(prompt string) (*secret.Buffer, error)

	logger *slog.Logger
}

// Open loads the console's settings and persisted session.
func (r *Runtime) Open(logger *slog.Logger) (*Environment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	directory := r.StateDirectory
	if directory == "" {
		var err error
		directory, err = settings.StateDirectory(r.Console)
		if err != nil {
			return nil, Internal("%w", err)
		}
	}

	store := settings.NewStore(directory, logger)
	effective, err := settings.ApplyEnvironment(store.Load())
	if err != nil {
		return nil, Validation("%w", err)
	}

	client := roomapi.NewClient(roomapi.ClientConfig{
		HTTPClient: r.HTTPClient,
		Logger:     logger,
		UserAgent:  userAgent(r.Program),
	})
	manager := session.NewManager(session.ManagerConfig{
		Store:  session.NewFileTokenStore(directory),
		Client: client,
		Logger: logger,
	})
	manager.LoadPersistedToken()

	environment := &Environment{
		Program:        r.Program,
		Directory:      directory,
		SettingsStore:  store,
		Settings:       effective,
		Session:        manager,
		Client:         client,
		Clock:          r.Clock,
		Stdin:          r.Stdin,
		Stdout:         r.Stdout,
		Stderr:         r.Stderr,
		PromptPassword: r.PromptPassword,
		logger:         logger,
	}
	if environment.Clock == nil {
		environment.Clock = clock.Real()
	}
	if environment.Stdin == nil {
		environment.Stdin = os.Stdin
	}
	if environment.Stdout == nil {
		environment.Stdout = os.Stdout
	}
	if environment.Stderr == nil {
		environment.Stderr = os.Stderr
	}
	if environment.PromptPassword == nil {
		stderr := environment.Stderr
		environment.PromptPassword = func(prompt string) (*secret.Buffer, error) {
			return secret.ReadFromTerminal(int(os.Stdin.Fd()), prompt, stderr)
		}
	}
	return environment, nil
}

func userAgent(program string) string {
	product := version.Product(roomapi.DefaultUserAgent)
	if program == "" {
		return product
	}
	return product + " (" + program + ")"
}

// Control returns the room and user workflows bound to this session.
func (e *Environment) Control() *control.Workflows {
	return control.New(control.Config{
		Client:   e.Client,
		Settings: e.Settings,
		Tokens:   e.Session,
		Logger:   e.logger,
	})
}

// SafetyReset returns a reset workflow bound to this session.
func (e *Environment) SafetyReset() *safetyreset.Workflow {
	return safetyreset.New(safetyreset.Config{
		Client:   e.Client,
		Settings: e.Settings,
		Tokens:   e.Session,
		Clock:    e.Clock,
		Logger:   e.logger,
	})
}

// LoginHint is the hint attached to errors that a fresh login fixes.
func (e *Environment) LoginHint() string {
	return fmt.Sprintf("Run '%s login <username>' to sign in.", e.Program)
}

// Printf writes formatted text to stdout.
func (e *Environment) Printf(format string, args ...any) {
	fmt.Fprintf(e.Stdout, format, args...)
}
