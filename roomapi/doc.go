// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package roomapi is the HTTP client shared by every console. It speaks
// JSON to two services: the auth service (login, user administration)
// and the room API (status, control, graphs, safety reset).
//
// [Client] owns the transport and request logging. Typed calls go
// through the generic helpers [GetJSON], [GetOptionalJSON] and
// [PostJSON], since Go methods cannot take type parameters. Each helper
// attaches "Authorization: Bearer <token>" only when the token is
// non-empty, tags the request with a fresh X-Request-ID, and maps the
// response onto one of three outcomes:
//
//   - a decoded, validated value of the requested type
//   - [*HTTPError] for any non-2xx status, carrying the body verbatim
//   - [*DecodeError] when a 2xx body does not fit the expected contract
//
// A 204 is its own outcome. GetOptionalJSON reports it as a nil pointer
// ("no such resource"); GetJSON reports it as [ErrNoContent]. Neither
// confuses it with a decode failure.
//
// [Endpoint] builds request URLs from a configured base URL and
// path-escaped segments.
package roomapi
