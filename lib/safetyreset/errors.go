// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package safetyreset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPendingReset is returned by ConfirmPending in the Idle state.
var ErrNoPendingReset = errors.New("no safety reset is pending")

// PreconditionError is a reset request the room refused: the caller's
// role may not reset, or a device is not SAFE. The attempt is over; a
// new request is needed once the condition is cleared.
type PreconditionError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *PreconditionError) Error() string {
	return withBody(fmt.Sprintf("safety reset refused (%d)", e.StatusCode), e.Message)
}

func (e *PreconditionError) Unwrap() error { return e.Err }

// ExpiryError is a confirm the room rejected because the reset id is
// expired, already used, or unknown. The operator must request again.
type ExpiryError struct {
	ResetID    string
	StatusCode int
	Message    string
	Err        error
}

func (e *ExpiryError) Error() string {
	return withBody(fmt.Sprintf("safety reset %s is no longer valid (%d); request a new reset", e.ResetID, e.StatusCode), e.Message)
}

func (e *ExpiryError) Unwrap() error { return e.Err }

func withBody(message, body string) string {
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		return message + ": " + trimmed
	}
	return message
}

// IsPreconditionError reports whether err's chain contains a
// *PreconditionError.
func IsPreconditionError(err error) bool {
	var preconditionErr *PreconditionError
	return errors.As(err, &preconditionErr)
}

// IsExpiryError reports whether err's chain contains an *ExpiryError.
func IsExpiryError(err error) bool {
	var expiryErr *ExpiryError
	return errors.As(err, &expiryErr)
}
