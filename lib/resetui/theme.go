// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package resetui

import "github.com/charmbracelet/lipgloss"

// Theme defines the colours of the reset flow. All colours are ANSI
// 256-colour codes.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color
	Header     lipgloss.Color

	// Countdown bar fill while time remains and once it has elapsed.
	BarActive  lipgloss.Color
	BarElapsed lipgloss.Color

	Success lipgloss.Color
	Failure lipgloss.Color
	Warning lipgloss.Color
}

// DefaultTheme is the built-in dark-terminal colour scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("243"),
	Header:     lipgloss.Color("214"),
	BarActive:  lipgloss.Color("208"),
	BarElapsed: lipgloss.Color("240"),
	Success:    lipgloss.Color("78"),
	Failure:    lipgloss.Color("203"),
	Warning:    lipgloss.Color("220"),
}
