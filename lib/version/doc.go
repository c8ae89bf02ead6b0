// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the console binaries.
//
// [GitCommit], [GitDirty], [BuildTime], and [Version] are injected with
// -ldflags -X at release time:
//
//	go build -ldflags "-X github.com/sentient-engine/consoles/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/sentient-tech
//
// Development builds and tests see "unknown" and "0.1.0-dev".
package version
