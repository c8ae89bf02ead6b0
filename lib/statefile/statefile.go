// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

// Package statefile writes the consoles' small per-installation state
// files (settings, sealed token, identity) so that a reader sees either
// the previous contents or the new contents, never a partial write.
package statefile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirectoryMode is the permission used when creating a state directory.
const DirectoryMode = 0o700

// FileMode is the permission of every state file.
const FileMode = 0o600

// WriteAtomic writes data to a temporary file next to path, syncs it,
// and renames it over path. On any failure the temporary file is removed
// and path is left as it was.
func WriteAtomic(path string, data []byte) error {
	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, DirectoryMode); err != nil {
		return fmt.Errorf("creating state directory %s: %w", directory, err)
	}

	file, err := os.CreateTemp(directory, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file in %s: %w", directory, err)
	}
	temporaryPath := file.Name()

	fail := func(step string, err error) error {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("%s %s: %w", step, temporaryPath, err)
	}
	if err := file.Chmod(FileMode); err != nil {
		return fail("setting mode on", err)
	}
	if _, err := file.Write(data); err != nil {
		return fail("writing", err)
	}
	if err := file.Sync(); err != nil {
		return fail("syncing", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming %s to %s: %w", temporaryPath, path, err)
	}
	return nil
}

// Remove deletes path. A path that does not exist is not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}
