// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoContent is returned by GetJSON when the server answers 204.
var ErrNoContent = errors.New("roomapi: response has no content")

// HTTPError is a non-2xx response. Body is the response body as sent,
// up to netutil.MaxResponseSize.
//
//	var httpErr *roomapi.HTTPError
//	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusConflict { ... }
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	message := fmt.Sprintf("roomapi: %s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
	if body := strings.TrimSpace(e.Body); body != "" {
		message += ": " + body
	}
	return message
}

// DecodeError is a 2xx response whose body is not valid JSON for the
// expected type or is missing required fields.
type DecodeError struct {
	URL  string
	Body string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("roomapi: unexpected response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusCode returns the status of the *HTTPError in err's chain, or 0.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}

// IsStatus reports whether err carries an *HTTPError with one of codes.
func IsStatus(err error, codes ...int) bool {
	status := StatusCode(err)
	if status == 0 {
		return false
	}
	for _, code := range codes {
		if status == code {
			return true
		}
	}
	return false
}

// IsDecodeError reports whether err's chain contains a *DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}
