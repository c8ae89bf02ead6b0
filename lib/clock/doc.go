// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source so that anything
// derived from the wall clock (token expiry display, safety reset
// countdowns, fake backend expiry) is deterministic under test.
//
// Production code holds a Clock field and is handed Real(). Tests hand
// it Fake(start) and move time forward with Advance:
//
//	fakeClock := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	workflow := safetyreset.New(safetyreset.Config{Clock: fakeClock, ...})
//	fakeClock.Advance(61 * time.Second)
package clock
