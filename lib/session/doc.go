// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package session owns an operator's bearer token for one console.
//
// [Manager] is the single owner of the in-memory session: the token and
// the claims decoded from it. Login replaces both; Logout clears both.
// Nothing else writes the token. Consumers that only need to attach the
// token to requests depend on a Token() method, which *Manager
// satisfies.
//
// Claims come from [Decode], which reads the unverified payload segment
// of a JWT. They are for display (who am I, what role, when does it
// expire). The auth service and room API verify the signature and make
// every authorization decision; nothing in the consoles does.
//
// The token is persisted by a [TokenStore]. [FileTokenStore] seals it
// with age to an X25519 identity generated for the state directory, so
// a copied token file is useless without that installation's key.
package session
