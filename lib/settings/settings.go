// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package settings

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Defaults used by the consoles when nothing else is configured.
const (
	DefaultAuthBaseURL    = "https://auth.sentientengine.ai"
	DefaultRoomAPIBaseURL = "https://api.clockwork.sentientengine.ai"
	DefaultRoomID         = "clockwork"
)

// Settings is the endpoint configuration for one console.
type Settings struct {
	AuthBaseURL    string `yaml:"auth_base_url" json:"auth_base_url"`
	RoomAPIBaseURL string `yaml:"room_api_base_url" json:"room_api_base_url"`
	RoomID         string `yaml:"room_id" json:"room_id"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		AuthBaseURL:    DefaultAuthBaseURL,
		RoomAPIBaseURL: DefaultRoomAPIBaseURL,
		RoomID:         DefaultRoomID,
	}
}

// WithDefaults returns s with each blank field replaced by its default.
// Surrounding whitespace is trimmed from the others.
func (s Settings) WithDefaults() Settings {
	defaults := Defaults()
	return Settings{
		AuthBaseURL:    orDefault(s.AuthBaseURL, defaults.AuthBaseURL),
		RoomAPIBaseURL: orDefault(s.RoomAPIBaseURL, defaults.RoomAPIBaseURL),
		RoomID:         orDefault(s.RoomID, defaults.RoomID),
	}
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

// Validate checks that every field is set and that both base URLs are
// absolute http or https URLs.
func (s Settings) Validate() error {
	var problems []error
	for _, field := range []struct{ name, value string }{
		{"auth base URL", s.AuthBaseURL},
		{"room API base URL", s.RoomAPIBaseURL},
	} {
		if err := validateBaseURL(field.value); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", field.name, err))
		}
	}
	if strings.TrimSpace(s.RoomID) == "" {
		problems = append(problems, errors.New("room ID is empty"))
	}
	return errors.Join(problems...)
}

func validateBaseURL(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("empty")
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%q is not an http or https URL", value)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%q has no host", value)
	}
	return nil
}

type environmentOverrides struct {
	AuthBaseURL    string `env:"SENTIENT_AUTH_URL"`
	RoomAPIBaseURL string `env:"SENTIENT_ROOM_API_URL"`
	RoomID         string `env:"SENTIENT_ROOM_ID"`
}

// ApplyEnvironment overlays the SENTIENT_* environment variables that
// are set and non-empty.
func ApplyEnvironment(s Settings) (Settings, error) {
	var overrides environmentOverrides
	if err := env.Parse(&overrides); err != nil {
		return s, fmt.Errorf("parsing environment: %w", err)
	}
	if overrides.AuthBaseURL != "" {
		s.AuthBaseURL = overrides.AuthBaseURL
	}
	if overrides.RoomAPIBaseURL != "" {
		s.RoomAPIBaseURL = overrides.RoomAPIBaseURL
	}
	if overrides.RoomID != "" {
		s.RoomID = overrides.RoomID
	}
	return s, nil
}

// StateDirectory returns the directory holding a console's settings and
// token: $SENTIENT_CONFIG_DIR/<console> when set, otherwise
// $XDG_CONFIG_HOME/sentient/<console>, otherwise
// ~/.config/sentient/<console>.
func StateDirectory(console string) (string, error) {
	if root := os.Getenv("SENTIENT_CONFIG_DIR"); root != "" {
		return filepath.Join(root, console), nil
	}
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating configuration directory: %w", err)
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "sentient", console), nil
}
