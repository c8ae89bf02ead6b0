// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides small helpers shared by tests.
//
// [RequireReceive] and [RequireNoReceive] wrap the select-with-timeout
// pattern for code that delivers results on channels, such as the
// bubbletea commands in lib/resetui that wait on a fake clock. They are
// the only place tests wait on the wall clock.
//
// [WritePasswordFile] puts a password where --password-file can read
// it.
//
// All helpers fail the test on error rather than returning one.
package testutil
