// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package control implements the room operations the consoles drive:
// status snapshots, dispatch pause and resume, graph upload, listing
// and activation, and user administration against the auth service.
//
// [Workflows] holds no authoritative state. Every call reads the token
// from its [TokenSource] at call time, performs its own request cycle
// through roomapi, and returns what the server said. Mutations that
// change a listing the operator is looking at (graph upload and
// activation, every user mutation) are followed by exactly one refetch
// of that listing, so the caller always sees server state rather than a
// locally patched cache. When the mutation went through but the refetch
// did not, the error is a [*RefreshError]: the change was applied, only
// the view of it is missing.
//
// Graph activation is recorded by the room API immediately but takes
// effect on the room core's own schedule (currently its next restart).
// Nothing in this package reports activation as live.
package control
