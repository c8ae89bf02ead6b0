// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument marks input rejected before any request was sent.
var ErrInvalidArgument = errors.New("invalid argument")

// RefreshError means Operation was applied by the server but the listing
// that should have shown its effect could not be fetched.
type RefreshError struct {
	Operation string
	Err       error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("%s succeeded, but refreshing the result failed: %v", e.Operation, e.Err)
}

func (e *RefreshError) Unwrap() error { return e.Err }

// IsRefreshError reports whether err's chain contains a *RefreshError.
func IsRefreshError(err error) bool {
	var refreshErr *RefreshError
	return errors.As(err, &refreshErr)
}
