// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil bounds how much of an HTTP response body the consoles
// will read. The room API and auth service answer with small JSON
// documents; a server that streams without end must not exhaust the
// operator's machine.
package netutil

import "io"

// MaxResponseSize caps every JSON response body read: 32 MB.
const MaxResponseSize int64 = 32 << 20

// ReadResponse reads body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ErrorBody reads an error response body for inclusion in an error
// value. Read failures yield whatever was read before them.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return string(data)
}
