// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings persists the endpoints a console talks to: the auth
// service base URL, the room API base URL, and the room ID.
//
// Settings are layered. The file written by [Store.Save] is the durable
// layer; [Store.Load] reads it and fills every empty or missing field
// with its default, so a loaded Settings always has all three fields.
// [ApplyEnvironment] overlays SENTIENT_AUTH_URL, SENTIENT_ROOM_API_URL
// and SENTIENT_ROOM_ID for a single invocation without touching the
// file. Command-line flags, handled by the CLI, sit on top.
//
// A damaged settings file is never an error. Load logs a [*ConfigError]
// and carries on with whatever it could salvage plus defaults.
package settings
