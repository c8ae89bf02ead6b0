// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomtest is an in-process stand-in for the Sentient auth
// service and room API, for tests of the consoles.
//
// A [Server] serves both services from one httptest listener, so a test
// points AuthBaseURL and RoomAPIBaseURL at the same URL. It follows the
// real services' status codes: 401 for bad credentials or an
// insufficient role on room routes, 403 for non-admin user
// administration, 201 for created users and graphs, 202 for control ops,
// 204 for an absent active graph, 409 for duplicates and unsafe devices,
// 400 for unknown or expired safety reset ids.
//
// Tokens are real HS256 JWTs signed with a per-server key. Reset expiry
// follows the server's clock, which tests usually make a
// [clock.FakeClock]. Every request is recorded, so tests can assert
// exactly how many calls a workflow made.
package roomtest
