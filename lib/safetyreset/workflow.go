// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package safetyreset

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/settings"
	"github.com/sentient-engine/consoles/roomapi"
)

// Window is the confirmation window the room grants. Used only when the
// server does not report an expiry.
const Window = 60 * time.Second

// DefaultReason is sent when the operator gives none.
const DefaultReason = "tech console request"

// State is the workflow's position in the protocol.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// Handle identifies one reset request.
type Handle struct {
	ResetID     string    `json:"reset_id"`
	RequestedAt time.Time `json:"requested_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Remaining returns how long until ExpiresAt, never negative. For
// display; the server decides validity.
func (h Handle) Remaining(now time.Time) time.Duration {
	remaining := h.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Window returns the full length of the handle's confirmation window.
func (h Handle) Window() time.Duration { return h.ExpiresAt.Sub(h.RequestedAt) }

// TokenSource supplies the bearer token at call time.
type TokenSource interface {
	Token() string
}

// Config configures a Workflow.
type Config struct {
	Client   *roomapi.Client
	Settings settings.Settings
	Tokens   TokenSource
	// Clock stamps handles. Defaults to clock.Real().
	Clock clock.Clock
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Workflow is one operator's safety reset state machine.
type Workflow struct {
	client   *roomapi.Client
	settings settings.Settings
	tokens   TokenSource
	clock    clock.Clock
	logger   *slog.Logger

	mu      sync.Mutex
	pending *Handle
}

// New creates a Workflow in the Idle state.
func New(config Config) *Workflow {
	workflowClock := config.Clock
	if workflowClock == nil {
		workflowClock = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflow{
		client:   config.Client,
		settings: config.Settings,
		tokens:   config.Tokens,
		clock:    workflowClock,
		logger:   logger.With("room", config.Settings.RoomID),
	}
}

// State returns Idle or Pending.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return Idle
	}
	return Pending
}

// Pending returns the pending handle, if any.
func (w *Workflow) Pending() (Handle, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending == nil {
		return Handle{}, false
	}
	return *w.pending, true
}

type requestBody struct {
	Reason string `json:"reason"`
}

type requestResponse struct {
	ResetID         string `json:"reset_id"`
	ExpiresAtUnixMS *int64 `json:"expires_at_unix_ms"`
}

func (r requestResponse) Validate() error {
	if r.ResetID == "" {
		return errors.New("missing reset_id")
	}
	return nil
}

type confirmBody struct {
	ResetID string `json:"reset_id"`
}

var preconditionStatuses = []int{
	http.StatusUnauthorized,
	http.StatusForbidden,
	http.StatusConflict,
	http.StatusPreconditionFailed,
	http.StatusUnprocessableEntity,
	http.StatusLocked,
}

// expiryStatuses excludes 404, which the room returns for an unknown
// room rather than an unknown reset id.
var expiryStatuses = []int{
	http.StatusBadRequest,
	http.StatusGone,
}

func (w *Workflow) token() string {
	if w.tokens == nil {
		return ""
	}
	return w.tokens.Token()
}

func (w *Workflow) endpoint(action string) string {
	return roomapi.Endpoint(w.settings.RoomAPIBaseURL, "v8", "room", w.settings.RoomID, "safety", "reset", action)
}

// Request abandons any pending handle and asks the room for a new
// reset. On success the workflow is Pending with the returned handle; on
// any failure it is Idle.
func (w *Workflow) Request(ctx context.Context, reason string) (Handle, error) {
	if strings.TrimSpace(reason) == "" {
		reason = DefaultReason
	}

	w.mu.Lock()
	if w.pending != nil {
		w.logger.Info("abandoning pending safety reset", "reset_id", w.pending.ResetID)
		w.pending = nil
	}
	w.mu.Unlock()

	requestedAt := w.clock.Now()
	response, err := roomapi.PostJSON[requestResponse](ctx, w.client, w.endpoint("request"), requestBody{Reason: reason}, w.token())
	if err != nil {
		var httpErr *roomapi.HTTPError
		if errors.As(err, &httpErr) && roomapi.IsStatus(err, preconditionStatuses...) {
			w.logger.Warn("safety reset refused", "status", httpErr.StatusCode)
			return Handle{}, &PreconditionError{StatusCode: httpErr.StatusCode, Message: httpErr.Body, Err: err}
		}
		return Handle{}, err
	}

	handle := Handle{ResetID: response.ResetID, RequestedAt: requestedAt, ExpiresAt: requestedAt.Add(Window)}
	if response.ExpiresAtUnixMS != nil {
		handle.ExpiresAt = time.UnixMilli(*response.ExpiresAtUnixMS)
	}

	w.mu.Lock()
	w.pending = &handle
	w.mu.Unlock()
	w.logger.Info("safety reset requested", "reset_id", handle.ResetID, "expires_at", handle.ExpiresAt)
	return handle, nil
}

// Confirm sends handle's reset id to the room, whatever the local clock
// says. If handle is the pending one, the workflow returns to Idle
// regardless of the outcome.
func (w *Workflow) Confirm(ctx context.Context, handle Handle) error {
	_, err := roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.endpoint("confirm"), confirmBody{ResetID: handle.ResetID}, w.token())

	w.mu.Lock()
	if w.pending != nil && w.pending.ResetID == handle.ResetID {
		w.pending = nil
	}
	w.mu.Unlock()

	if err != nil {
		var httpErr *roomapi.HTTPError
		if errors.As(err, &httpErr) && roomapi.IsStatus(err, expiryStatuses...) {
			w.logger.Warn("safety reset confirm rejected", "reset_id", handle.ResetID, "status", httpErr.StatusCode)
			return &ExpiryError{ResetID: handle.ResetID, StatusCode: httpErr.StatusCode, Message: httpErr.Body, Err: err}
		}
		return err
	}
	w.logger.Info("safety reset confirmed", "reset_id", handle.ResetID)
	return nil
}

// ConfirmPending confirms the pending handle.
func (w *Workflow) ConfirmPending(ctx context.Context) error {
	handle, ok := w.Pending()
	if !ok {
		return ErrNoPendingReset
	}
	return w.Confirm(ctx, handle)
}
