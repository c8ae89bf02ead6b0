// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package resetui is the interactive dual-confirm flow for safety
// resets.
//
// The model requests a reset when it starts, then shows the reset id
// and a countdown to the expiry the room reported. The operator
// confirms with y or enter, or abandons with q, esc, or ctrl+c. The
// countdown is informational: once it reaches zero the model still
// offers to confirm, because only the room knows whether the reset is
// still valid.
//
// The model delegates all network work to a [Workflow], normally a
// *safetyreset.Workflow, and reads time through a [clock.Clock] so
// tests can step the countdown without sleeping.
package resetui
