// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts small values at rest with age X25519 keys.
//
// The consoles use it to keep the bearer token on disk readable only by
// the installation that wrote it: each state directory holds its own
// identity, and the token file is sealed to that identity's recipient.
// Private keys and opened plaintext come back as [secret.Buffer] values.
package sealed
