// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/sentient-engine/consoles/lib/control"
	"github.com/sentient-engine/consoles/lib/graphdoc"
	"github.com/sentient-engine/consoles/lib/safetyreset"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/roomapi"
)

// Classify wraps err in a *ToolError whose category and hint match
// the failure. Errors that are already a *ToolError, and *ExitError,
// are returned unchanged. program is the binary name used in hints.
func Classify(err error, program string) error {
	if err == nil {
		return nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return err
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	loginHint := fmt.Sprintf("Run '%s login <username>' to sign in again.", program)

	var refreshErr *control.RefreshError
	if errors.As(err, &refreshErr) {
		return wrap(CategoryTransient, err).
			WithHint("The change was applied. Re-run the matching list command to see the current state.")
	}

	var authErr *session.AuthError
	if errors.As(err, &authErr) {
		return wrap(CategoryForbidden, err).WithHint("Check the username and password. Disabled accounts cannot sign in.")
	}

	var preconditionErr *safetyreset.PreconditionError
	if errors.As(err, &preconditionErr) {
		switch preconditionErr.StatusCode {
		case http.StatusUnauthorized:
			return wrap(CategoryForbidden, err).WithHint(loginHint)
		case http.StatusForbidden:
			return wrap(CategoryForbidden, err).WithHint("Safety resets need a TECH or ADMIN account.")
		}
		return wrap(CategoryConflict, err).WithHint("Bring every device to a SAFE state, then request the reset again.")
	}

	var expiryErr *safetyreset.ExpiryError
	if errors.As(err, &expiryErr) {
		return wrap(CategoryConflict, err).WithHint(fmt.Sprintf("Request a new reset with '%s safety request'.", program))
	}
	if errors.Is(err, safetyreset.ErrNoPendingReset) {
		return wrap(CategoryValidation, err).WithHint(fmt.Sprintf("Run '%[1]s safety request' first, then '%[1]s safety confirm <reset-id>'.", program))
	}

	var parseErr *graphdoc.ParseError
	if errors.As(err, &parseErr) || errors.Is(err, control.ErrInvalidArgument) {
		return wrap(CategoryValidation, err)
	}

	if errors.Is(err, roomapi.ErrNoContent) {
		return wrap(CategoryNotFound, err)
	}
	if roomapi.IsDecodeError(err) {
		return wrap(CategoryInternal, err).WithHint("The server's response was not understood. Check room_api_base_url and auth_base_url in settings.")
	}

	var httpErr *roomapi.HTTPError
	if errors.As(err, &httpErr) {
		switch status := httpErr.StatusCode; {
		case status == http.StatusUnauthorized:
			return wrap(CategoryForbidden, err).WithHint(loginHint)
		case status == http.StatusForbidden:
			return wrap(CategoryForbidden, err).WithHint("Your role does not allow this operation.")
		case status == http.StatusNotFound:
			return wrap(CategoryNotFound, err)
		case status == http.StatusConflict || status == http.StatusPreconditionFailed || status == http.StatusLocked:
			return wrap(CategoryConflict, err)
		case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
			return wrap(CategoryValidation, err)
		case status == http.StatusTooManyRequests || status >= 500:
			return wrap(CategoryTransient, err)
		}
		return wrap(CategoryInternal, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return wrap(CategoryTransient, err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return wrap(CategoryTransient, err).WithHint(fmt.Sprintf("Check the base URLs with '%s settings show'.", program))
	}
	return wrap(CategoryInternal, err)
}

func wrap(category ErrorCategory, err error) *ToolError {
	return &ToolError{Category: category, Err: err}
}
