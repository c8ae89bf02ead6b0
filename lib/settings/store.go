// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sentient-engine/consoles/lib/statefile"
)

// FileName is the settings file inside a console's state directory.
const FileName = "settings.v1.yaml"

// ConfigError describes a settings file that could not be used in full.
// It is logged by Load, never returned.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("settings file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Store reads and writes one console's settings file.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore returns a Store for the settings file in directory. A nil
// logger means slog.Default().
func NewStore(directory string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: filepath.Join(directory, FileName), logger: logger}
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Load returns the persisted settings with defaults for every blank
// field. A missing file yields Defaults(). An unreadable or malformed
// file is logged as a *ConfigError at WARN; fields that still decoded
// cleanly are kept.
func (s *Store) Load() Settings {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults()
	}
	if err != nil {
		s.report(err)
		return Defaults()
	}

	var persisted Settings
	if err := yaml.Unmarshal(data, &persisted); err != nil {
		var typeErr *yaml.TypeError
		if !errors.As(err, &typeErr) {
			// Syntax errors leave nothing trustworthy.
			persisted = Settings{}
		}
		s.report(err)
	}
	return persisted.WithDefaults()
}

func (s *Store) report(err error) {
	configErr := &ConfigError{Path: s.path, Err: err}
	s.logger.Warn("using default settings", "error", configErr)
}

// Save replaces the settings file. On failure the previous file is left
// intact.
func (s *Store) Save(settings Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	if err := statefile.WriteAtomic(s.path, data); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
