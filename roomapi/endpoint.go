// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomapi

import (
	"net/url"
	"strings"
)

// Endpoint joins base with each segment, path-escaping the segments.
// Trailing slashes on base are dropped, so both
// "https://api.example" and "https://api.example/" produce the same URL.
func Endpoint(base string, segments ...string) string {
	var builder strings.Builder
	builder.WriteString(strings.TrimRight(base, "/"))
	for _, segment := range segments {
		builder.WriteByte('/')
		builder.WriteString(url.PathEscape(segment))
	}
	return builder.String()
}
