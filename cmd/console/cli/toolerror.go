// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ErrorCategory classifies command errors so operators and scripts can
// tell bad input from a refused request from a flaky network.
type ErrorCategory string

const (
	// CategoryValidation: the operator supplied invalid input.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: a referenced user, graph version, or room does
	// not exist.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryForbidden: the credentials are missing, rejected, or lack
	// the role the operation needs.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryConflict: the room refused because of its current state
	// (duplicate user, live run, devices not safe, expired reset).
	CategoryConflict ErrorCategory = "conflict"

	// CategoryTransient: a network failure or server error. Retrying
	// may help.
	CategoryTransient ErrorCategory = "transient"

	// CategoryInternal: anything else, including responses the console
	// could not decode.
	CategoryInternal ErrorCategory = "internal"
)

// ToolError is a categorized command error with an optional hint.
// Construct it with the category functions (Validation, NotFound, ...).
type ToolError struct {
	Category ErrorCategory
	Err      error

	// Hint is appended to the message after a blank line.
	Hint string
}

func (e *ToolError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *ToolError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns the receiver for chaining.
func (e *ToolError) WithHint(hint string) *ToolError {
	e.Hint = hint
	return e
}

// Validation creates a validation error.
func Validation(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound creates a not-found error.
func NotFound(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Forbidden creates a forbidden error.
func Forbidden(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Conflict creates a conflict error.
func Conflict(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Transient creates a transient error.
func Transient(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryTransient, Err: fmt.Errorf(format, args...)}
}

// Internal creates an internal error.
func Internal(format string, args ...any) *ToolError {
	return &ToolError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}
