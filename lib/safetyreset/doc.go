// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package safetyreset drives the room's two-phase safety reset.
//
// A technician first requests a reset. The room API checks the caller's
// role and that every device reports SAFE, then hands back a reset id
// that can be confirmed once within a 60 second window. Confirming that
// id, possibly from a second operator, releases the safety latch.
//
// [Workflow] tracks one operator's side of this exchange as a two-state
// machine:
//
//	Idle --Request--> Pending(handle) --Confirm--> Idle
//	       (failure)  Idle               (any outcome)
//
// Starting a new request abandons whatever handle was pending; handles
// are never merged. The window belongs to the server. Handle.Remaining
// feeds countdown displays, but Confirm always sends the request and
// reports exactly what the server answered: an expired, reused or
// unknown id is an [*ExpiryError], a refused request is a
// [*PreconditionError], and anything else is passed through.
package safetyreset
