// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret holds operator passwords and key material in memory
// that lives outside the Go heap.
//
// A [Buffer] is an anonymous mmap region locked into RAM with mlock and
// excluded from core dumps. Close zeroes it before unmapping, so a
// password typed at a console prompt does not linger after the login
// request that used it.
//
// Passwords enter a Buffer through [NewFromBytes] (which zeroes its
// source), [ReadFromPath] for --password-file, or [ReadFromTerminal] for
// an interactive no-echo prompt.
package secret
