// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WritePasswordFile writes password to a 0600 file in a per-test
// directory and returns its path.
func WritePasswordFile(t testing.TB, password string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "password")
	if err := os.WriteFile(path, []byte(password+"\n"), 0o600); err != nil {
		t.Fatalf("writing password file: %v", err)
	}
	return path
}
