// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package resetui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings for the reset flow.
type KeyMap struct {
	Confirm key.Binding
	Abandon key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Confirm: key.NewBinding(
		key.WithKeys("y", "enter"),
		key.WithHelp("y/enter", "confirm reset"),
	),
	Abandon: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q/esc", "abandon"),
	),
}
