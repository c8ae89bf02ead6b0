// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"fmt"
	"strings"
)

// AuthError is a login the auth service rejected (401 or 403). Message
// is the server's response body.
type AuthError struct {
	Username   string
	StatusCode int
	Message    string
	Err        error
}

func (e *AuthError) Error() string {
	message := fmt.Sprintf("login rejected for %q (%d)", e.Username, e.StatusCode)
	if body := strings.TrimSpace(e.Message); body != "" {
		message += ": " + body
	}
	return message
}

func (e *AuthError) Unwrap() error { return e.Err }

// IsAuthError reports whether err's chain contains an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}
