// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
)

// StatusSnapshot is the room core's status document, kept byte for byte
// as the server sent it.
type StatusSnapshot struct {
	Raw json.RawMessage
}

func (s *StatusSnapshot) UnmarshalJSON(data []byte) error {
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

func (s StatusSnapshot) MarshalJSON() ([]byte, error) {
	if len(s.Raw) == 0 {
		return []byte("null"), nil
	}
	return s.Raw, nil
}

// Validate requires the snapshot to be a JSON object.
func (s StatusSnapshot) Validate() error {
	trimmed := bytes.TrimSpace(s.Raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.New("status snapshot is not a JSON object")
	}
	return nil
}

// Indented returns the snapshot re-indented for display. Key order and
// values are unchanged.
func (s StatusSnapshot) Indented() []byte {
	var buffer bytes.Buffer
	if err := json.Indent(&buffer, s.Raw, "", "  "); err != nil {
		return s.Raw
	}
	return buffer.Bytes()
}

// ControlOp is a room control operation.
type ControlOp string

const (
	OpPauseDispatch  ControlOp = "PAUSE_DISPATCH"
	OpResumeDispatch ControlOp = "RESUME_DISPATCH"
)

// ParseControlOp accepts the operations the consoles may send.
func ParseControlOp(value string) (ControlOp, error) {
	switch op := ControlOp(strings.ToUpper(strings.TrimSpace(value))); op {
	case OpPauseDispatch, OpResumeDispatch:
		return op, nil
	}
	return "", fmt.Errorf("%w: unknown control op %q", ErrInvalidArgument, value)
}

type controlRequest struct {
	Op         ControlOp      `json:"op"`
	Parameters map[string]any `json:"parameters"`
}

// GraphVersionRecord is one uploaded graph version.
type GraphVersionRecord struct {
	Version         int64 `json:"version"`
	CreatedAtUnixMS int64 `json:"created_at_unix_ms"`
}

func (r GraphVersionRecord) Validate() error {
	if r.Version < 1 {
		return fmt.Errorf("graph version %d is not positive", r.Version)
	}
	return nil
}

// CreatedAt returns the upload time.
func (r GraphVersionRecord) CreatedAt() time.Time { return time.UnixMilli(r.CreatedAtUnixMS) }

type graphVersionList []GraphVersionRecord

func (l graphVersionList) Validate() error {
	for index, record := range l {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("graphs[%d]: %w", index, err)
		}
	}
	return nil
}

// ActiveGraphState is the version the room core will load.
type ActiveGraphState struct {
	ActiveVersion     int64 `json:"active_version"`
	ActivatedAtUnixMS int64 `json:"activated_at_unix_ms"`
}

func (s ActiveGraphState) Validate() error {
	if s.ActiveVersion < 1 {
		return fmt.Errorf("active version %d is not positive", s.ActiveVersion)
	}
	return nil
}

// ActivatedAt returns when the version was activated.
func (s ActiveGraphState) ActivatedAt() time.Time { return time.UnixMilli(s.ActivatedAtUnixMS) }

// GraphCatalog is the room's graph versions as listed by the server plus
// the active version. Active is nil when no graph was ever activated.
type GraphCatalog struct {
	Versions []GraphVersionRecord `json:"versions"`
	Active   *ActiveGraphState    `json:"active"`
}

// IsActive reports whether version is the active one.
func (c GraphCatalog) IsActive(version int64) bool {
	return c.Active != nil && c.Active.ActiveVersion == version
}

// GraphUpload is the result of UploadGraph.
type GraphUpload struct {
	Version int64        `json:"version"`
	Catalog GraphCatalog `json:"catalog"`
}

type graphUploadResponse struct {
	Version int64 `json:"version"`
}

func (r graphUploadResponse) Validate() error {
	if r.Version < 1 {
		return errors.New("missing version")
	}
	return nil
}

type activateRequest struct {
	Version int64 `json:"version"`
}

// User is an operator account.
type User struct {
	Username        string       `json:"username"`
	Role            session.Role `json:"role"`
	Enabled         bool         `json:"enabled"`
	CreatedAtUnixMS int64        `json:"created_at_unix_ms"`
}

func (u User) Validate() error {
	if u.Username == "" {
		return errors.New("user has no username")
	}
	return nil
}

// CreatedAt returns when the account was created, or the zero time when
// the server did not say.
func (u User) CreatedAt() time.Time {
	if u.CreatedAtUnixMS == 0 {
		return time.Time{}
	}
	return time.UnixMilli(u.CreatedAtUnixMS)
}

type userList []User

func (l userList) Validate() error {
	for index, user := range l {
		if err := user.Validate(); err != nil {
			return fmt.Errorf("users[%d]: %w", index, err)
		}
	}
	return nil
}

// NewUser describes an account to create. Password is borrowed.
type NewUser struct {
	Username string
	Password *secret.Buffer
	Role     session.Role
}

type createUserRequest struct {
	Username string       `json:"username"`
	Password string       `json:"password"`
	Role     session.Role `json:"role"`
}

type setEnabledRequest struct {
	Enabled bool `json:"enabled"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
}
