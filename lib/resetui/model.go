// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package resetui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/safetyreset"
)

// DefaultTickInterval is how often the countdown redraws.
const DefaultTickInterval = 250 * time.Millisecond

const barWidth = 40

// Workflow is the reset lifecycle the model drives.
// *safetyreset.Workflow satisfies it.
type Workflow interface {
	Request(ctx context.Context, reason string) (safetyreset.Handle, error)
	ConfirmPending(ctx context.Context) error
}

// Phase is where the flow currently is.
type Phase int

const (
	// PhaseRequesting: the reset request is in flight.
	PhaseRequesting Phase = iota
	// PhaseAwaiting: a handle is held and the operator has not decided.
	PhaseAwaiting
	// PhaseConfirming: the confirm request is in flight.
	PhaseConfirming
	// PhaseConfirmed: the room accepted the confirmation.
	PhaseConfirmed
	// PhaseAbandoned: the operator quit without confirming.
	PhaseAbandoned
	// PhaseFailed: the request or the confirmation failed.
	PhaseFailed
	// PhaseInterrupted: the operator quit while the confirm request was
	// in flight, so its outcome is unknown.
	PhaseInterrupted
)

func (p Phase) String() string {
	switch p {
	case PhaseRequesting:
		return "requesting"
	case PhaseAwaiting:
		return "awaiting"
	case PhaseConfirming:
		return "confirming"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseAbandoned:
		return "abandoned"
	case PhaseFailed:
		return "failed"
	case PhaseInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Config configures a Model.
type Config struct {
	Workflow Workflow
	Reason   string

	// Context bounds the request and confirm calls. Defaults to
	// context.Background().
	Context context.Context

	Clock        clock.Clock
	TickInterval time.Duration
	Keys         *KeyMap
	Theme        *Theme
}

// Result is the outcome once the program exits.
type Result struct {
	Phase  Phase
	Handle safetyreset.Handle
	// HasHandle distinguishes a zero Handle from a failed request.
	HasHandle bool
	Err       error
}

type requestResultMsg struct {
	handle safetyreset.Handle
	err    error
}

type confirmResultMsg struct {
	err error
}

type tickMsg struct{}

// Model is the bubbletea model for the reset flow.
type Model struct {
	workflow Workflow
	reason   string
	ctx      context.Context
	clock    clock.Clock
	interval time.Duration
	keys     KeyMap
	theme    Theme
	bar      progress.Model
	// width is the terminal width, or 0 before the first resize.
	width int

	phase     Phase
	handle    safetyreset.Handle
	hasHandle bool
	err       error
}

// New creates a model in PhaseRequesting. The request is issued by the
// command Init returns.
func New(config Config) Model {
	if config.Context == nil {
		config.Context = context.Background()
	}
	if config.Clock == nil {
		config.Clock = clock.Real()
	}
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	keys := DefaultKeyMap
	if config.Keys != nil {
		keys = *config.Keys
	}
	theme := DefaultTheme
	if config.Theme != nil {
		theme = *config.Theme
	}
	return Model{
		workflow: config.Workflow,
		reason:   config.Reason,
		ctx:      config.Context,
		clock:    config.Clock,
		interval: config.TickInterval,
		keys:     keys,
		theme:    theme,
		bar:      newBar(theme.BarActive),
		phase:    PhaseRequesting,
	}
}

func newBar(fill lipgloss.Color) progress.Model {
	return progress.New(
		progress.WithSolidFill(string(fill)),
		progress.WithoutPercentage(),
		progress.WithWidth(barWidth),
	)
}

// Phase returns the current phase.
func (model Model) Phase() Phase { return model.phase }

// Result returns the outcome so far.
func (model Model) Result() Result {
	return Result{Phase: model.phase, Handle: model.handle, HasHandle: model.hasHandle, Err: model.err}
}

// Init implements tea.Model by issuing the reset request.
func (model Model) Init() tea.Cmd {
	workflow, ctx, reason := model.workflow, model.ctx, model.reason
	return func() tea.Msg {
		handle, err := workflow.Request(ctx, reason)
		return requestResultMsg{handle: handle, err: err}
	}
}

func (model Model) tick() tea.Cmd {
	after := model.clock.After(model.interval)
	return func() tea.Msg {
		<-after
		return tickMsg{}
	}
}

func (model Model) confirm() tea.Cmd {
	workflow, ctx := model.workflow, model.ctx
	return func() tea.Msg {
		return confirmResultMsg{err: workflow.ConfirmPending(ctx)}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case requestResultMsg:
		if model.phase != PhaseRequesting {
			return model, nil
		}
		if message.err != nil {
			model.phase = PhaseFailed
			model.err = message.err
			return model, tea.Quit
		}
		model.phase = PhaseAwaiting
		model.handle = message.handle
		model.hasHandle = true
		return model, model.tick()

	case confirmResultMsg:
		if model.phase != PhaseConfirming {
			return model, nil
		}
		if message.err != nil {
			model.phase = PhaseFailed
			model.err = message.err
		} else {
			model.phase = PhaseConfirmed
		}
		return model, tea.Quit

	case tickMsg:
		if model.phase != PhaseAwaiting {
			return model, nil
		}
		return model, model.tick()

	case tea.WindowSizeMsg:
		model.width = message.Width
		width := message.Width - 4
		if width > barWidth {
			width = barWidth
		}
		if width > 0 {
			model.bar.Width = width
		}
		return model, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(message, model.keys.Abandon):
			// An in-flight confirmation cannot be recalled, so only
			// ctrl+c interrupts it.
			if model.phase == PhaseConfirming {
				if message.Type != tea.KeyCtrlC {
					return model, nil
				}
				model.phase = PhaseInterrupted
				return model, tea.Quit
			}
			model.phase = PhaseAbandoned
			return model, tea.Quit
		case key.Matches(message, model.keys.Confirm):
			if model.phase != PhaseAwaiting {
				return model, nil
			}
			model.phase = PhaseConfirming
			return model, model.confirm()
		}
	}
	return model, nil
}

// View implements tea.Model.
func (model Model) View() string {
	header := lipgloss.NewStyle().Bold(true).Foreground(model.theme.Header)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)

	var builder strings.Builder
	builder.WriteString(header.Render("Safety reset"))
	builder.WriteString("\n\n")

	switch model.phase {
	case PhaseRequesting:
		builder.WriteString(faint.Render("Requesting reset..."))
		builder.WriteString("\n")
		return builder.String()
	case PhaseFailed:
		failure := lipgloss.NewStyle().Foreground(model.theme.Failure)
		builder.WriteString(failure.Render(model.wrap("Reset failed: " + errorText(model.err))))
		builder.WriteString("\n")
		return builder.String()
	case PhaseConfirmed:
		success := lipgloss.NewStyle().Foreground(model.theme.Success)
		builder.WriteString(success.Render("Reset " + model.handle.ResetID + " confirmed."))
		builder.WriteString("\n")
		return builder.String()
	case PhaseAbandoned:
		builder.WriteString(faint.Render("Reset abandoned."))
		builder.WriteString("\n")
		return builder.String()
	case PhaseInterrupted:
		warning := lipgloss.NewStyle().Foreground(model.theme.Warning)
		builder.WriteString(warning.Render(model.wrap("Interrupted while confirming reset " + model.handle.ResetID + "; the room may already have accepted it.")))
		builder.WriteString("\n")
		return builder.String()
	}

	builder.WriteString(normal.Render("Reset id: " + model.handle.ResetID))
	builder.WriteString("\n")

	now := model.clock.Now()
	remaining := model.handle.Remaining(now)
	if remaining > 0 {
		builder.WriteString(model.bar.ViewAs(fraction(remaining, model.handle.Window())))
		builder.WriteString(" ")
		builder.WriteString(normal.Render(formatRemaining(remaining)))
		builder.WriteString("\n")
	} else {
		elapsed := newBar(model.theme.BarElapsed)
		elapsed.Width = model.bar.Width
		builder.WriteString(elapsed.ViewAs(0))
		builder.WriteString("\n")
		warning := lipgloss.NewStyle().Foreground(model.theme.Warning)
		builder.WriteString(warning.Render(model.wrap("The local window has elapsed. You may still confirm; the room decides whether the reset is valid.")))
		builder.WriteString("\n")
	}

	builder.WriteString("\n")
	if model.phase == PhaseConfirming {
		builder.WriteString(faint.Render("Confirming..."))
	} else {
		builder.WriteString(faint.Render(helpLine(model.keys)))
	}
	builder.WriteString("\n")
	return builder.String()
}

func (model Model) wrap(text string) string {
	if model.width <= 0 {
		return text
	}
	return ansi.Wordwrap(text, model.width, "")
}

func helpLine(keys KeyMap) string {
	var parts []string
	for _, binding := range []key.Binding{keys.Confirm, keys.Abandon} {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return strings.Join(parts, "  •  ")
}

func fraction(remaining, window time.Duration) float64 {
	if window <= 0 {
		return 0
	}
	value := float64(remaining) / float64(window)
	if value > 1 {
		return 1
	}
	return value
}

// formatRemaining rounds up to whole seconds so the display reads 1s,
// not 0s, until the window has fully elapsed.
func formatRemaining(remaining time.Duration) string {
	seconds := (remaining + time.Second - 1) / time.Second
	return fmt.Sprintf("%ds remaining", seconds)
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

// Run executes the flow on the terminal and returns its outcome.
func Run(config Config, options ...tea.ProgramOption) (Result, error) {
	program := tea.NewProgram(New(config), options...)
	final, err := program.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running reset dialog: %w", err)
	}
	return final.(Model).Result(), nil
}
