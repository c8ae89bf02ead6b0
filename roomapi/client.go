// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sentient-engine/consoles/lib/netutil"
)

// DefaultUserAgent is sent when ClientConfig.UserAgent is empty.
const DefaultUserAgent = "sentient-console"

// ClientConfig configures a Client.
type ClientConfig struct {
	// HTTPClient performs requests. Nil means http.DefaultClient.
	// No timeout is imposed here; callers bound requests through ctx.
	HTTPClient *http.Client

	// Logger receives one DEBUG record per request. Nil means
	// slog.Default().
	Logger *slog.Logger

	UserAgent string
}

// Client sends JSON requests to the auth service and the room API. It is
// safe for concurrent use.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// Validator is implemented by response types with required fields. The
// helpers call Validate after decoding and turn a failure into a
// *DecodeError.
type Validator interface {
	Validate() error
}

// Empty is the response type for endpoints that return no contract body.
type Empty struct{}

// NewClient creates a Client.
func NewClient(config ClientConfig) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{httpClient: httpClient, logger: logger, userAgent: userAgent}
}

// GetJSON issues a GET and decodes the response into T. A 204 returns
// ErrNoContent.
func GetJSON[T any](ctx context.Context, client *Client, url, token string) (T, error) {
	var zero T
	status, body, err := client.do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return zero, err
	}
	if status == http.StatusNoContent {
		return zero, ErrNoContent
	}
	return decode[T](url, body)
}

// GetOptionalJSON issues a GET for a resource that may not exist. A 204
// returns (nil, nil).
func GetOptionalJSON[T any](ctx context.Context, client *Client, url, token string) (*T, error) {
	status, body, err := client.do(ctx, http.MethodGet, url, token, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		return nil, nil
	}
	value, err := decode[T](url, body)
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// PostJSON marshals body, issues a POST and decodes the response into T.
// A nil body sends no request body.
func PostJSON[T any](ctx context.Context, client *Client, url string, body any, token string) (T, error) {
	var zero T
	_, responseBody, err := client.do(ctx, http.MethodPost, url, token, body)
	if err != nil {
		return zero, err
	}
	return decode[T](url, responseBody)
}

func decode[T any](url string, body []byte) (T, error) {
	var value T
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &value); err != nil {
			var zero T
			return zero, &DecodeError{URL: url, Body: string(body), Err: err}
		}
	}
	if validator, ok := any(&value).(Validator); ok {
		if err := validator.Validate(); err != nil {
			var zero T
			return zero, &DecodeError{URL: url, Body: string(body), Err: err}
		}
	}
	return value, nil
}

// do performs one request. A non-2xx status is returned as *HTTPError.
func (c *Client) do(ctx context.Context, method, url, token string, requestBody any) (int, []byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return 0, nil, fmt.Errorf("roomapi: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("roomapi: creating request: %w", err)
	}

	requestID := uuid.NewString()
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.userAgent)
	request.Header.Set("X-Request-ID", requestID)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.DebugContext(ctx, "room api request failed",
			"method", method, "url", url, "request_id", requestID,
			"duration", time.Since(start), "error", err)
		return 0, nil, fmt.Errorf("roomapi: %s %s: %w", method, url, err)
	}
	defer response.Body.Close()

	c.logger.DebugContext(ctx, "room api request",
		"method", method, "url", url, "status", response.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return response.StatusCode, nil, &HTTPError{
			Method:     method,
			URL:        url,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return response.StatusCode, nil, fmt.Errorf("roomapi: reading response from %s: %w", url, err)
	}
	return response.StatusCode, responseBody, nil
}
