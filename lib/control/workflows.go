// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/settings"
	"github.com/sentient-engine/consoles/roomapi"
)

// TokenSource supplies the bearer token at call time. *session.Manager
// implements it.
type TokenSource interface {
	Token() string
}

// Config configures Workflows.
type Config struct {
	Client   *roomapi.Client
	Settings settings.Settings
	Tokens   TokenSource
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Workflows runs control operations for one room.
type Workflows struct {
	client   *roomapi.Client
	settings settings.Settings
	tokens   TokenSource
	logger   *slog.Logger
}

// New creates Workflows.
func New(config Config) *Workflows {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Workflows{
		client:   config.Client,
		settings: config.Settings,
		tokens:   config.Tokens,
		logger:   logger.With("room", config.Settings.RoomID),
	}
}

func (w *Workflows) token() string {
	if w.tokens == nil {
		return ""
	}
	return w.tokens.Token()
}

func (w *Workflows) roomEndpoint(segments ...string) string {
	return roomapi.Endpoint(w.settings.RoomAPIBaseURL, append([]string{"v8", "room", w.settings.RoomID}, segments...)...)
}

func (w *Workflows) authEndpoint(segments ...string) string {
	return roomapi.Endpoint(w.settings.AuthBaseURL, append([]string{"v8", "auth"}, segments...)...)
}

// mutateThenRefetch runs mutate and, when it succeeds, exactly one
// refetch. A failed refetch is wrapped in *RefreshError alongside the
// mutation's own result.
func mutateThenRefetch[M, R any](
	ctx context.Context,
	logger *slog.Logger,
	operation string,
	mutate func(context.Context) (M, error),
	refetch func(context.Context) (R, error),
) (M, R, error) {
	var emptyRefetch R
	mutated, err := mutate(ctx)
	if err != nil {
		return mutated, emptyRefetch, err
	}
	refetched, err := refetch(ctx)
	if err != nil {
		logger.Warn("refetch after mutation failed", "operation", operation, "error", err)
		return mutated, emptyRefetch, &RefreshError{Operation: operation, Err: err}
	}
	return mutated, refetched, nil
}

// RefreshStatus fetches the room core's status snapshot.
func (w *Workflows) RefreshStatus(ctx context.Context) (StatusSnapshot, error) {
	return roomapi.GetJSON[StatusSnapshot](ctx, w.client, w.roomEndpoint("core", "status"), w.token())
}

// PauseDispatch asks the room to stop dispatching.
func (w *Workflows) PauseDispatch(ctx context.Context) error {
	return w.SendControl(ctx, OpPauseDispatch)
}

// ResumeDispatch asks the room to resume dispatching.
func (w *Workflows) ResumeDispatch(ctx context.Context) error {
	return w.SendControl(ctx, OpResumeDispatch)
}

// SendControl posts op with empty parameters.
func (w *Workflows) SendControl(ctx context.Context, op ControlOp) error {
	if _, err := ParseControlOp(string(op)); err != nil {
		return err
	}
	_, err := roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.roomEndpoint("control"),
		controlRequest{Op: op, Parameters: map[string]any{}}, w.token())
	if err != nil {
		return err
	}
	w.logger.Info("control op accepted", "op", op)
	return nil
}

// ListGraphVersions returns the room's graph versions in server order.
func (w *Workflows) ListGraphVersions(ctx context.Context) ([]GraphVersionRecord, error) {
	versions, err := roomapi.GetJSON[graphVersionList](ctx, w.client, w.roomEndpoint("graphs"), w.token())
	return []GraphVersionRecord(versions), err
}

// GetActiveGraph returns the active graph, or nil when none was ever
// activated.
func (w *Workflows) GetActiveGraph(ctx context.Context) (*ActiveGraphState, error) {
	return roomapi.GetOptionalJSON[ActiveGraphState](ctx, w.client, w.roomEndpoint("graphs", "active"), w.token())
}

// RefreshGraphs lists versions and then reads the active version.
func (w *Workflows) RefreshGraphs(ctx context.Context) (GraphCatalog, error) {
	versions, err := w.ListGraphVersions(ctx)
	if err != nil {
		return GraphCatalog{}, err
	}
	active, err := w.GetActiveGraph(ctx)
	if err != nil {
		return GraphCatalog{}, err
	}
	return GraphCatalog{Versions: versions, Active: active}, nil
}

// UploadGraph stores document as a new graph version and refreshes the
// catalog. document must already be a parsed JSON value.
func (w *Workflows) UploadGraph(ctx context.Context, document json.RawMessage) (GraphUpload, error) {
	if len(document) == 0 || !json.Valid(document) {
		return GraphUpload{}, fmt.Errorf("%w: graph document is not valid JSON", ErrInvalidArgument)
	}
	uploaded, catalog, err := mutateThenRefetch(ctx, w.logger, "graph upload",
		func(ctx context.Context) (graphUploadResponse, error) {
			return roomapi.PostJSON[graphUploadResponse](ctx, w.client, w.roomEndpoint("graphs"), document, w.token())
		},
		w.RefreshGraphs,
	)
	if uploaded.Version > 0 {
		w.logger.Info("graph uploaded", "version", uploaded.Version)
	}
	return GraphUpload{Version: uploaded.Version, Catalog: catalog}, err
}

// ActivateGraph marks version active and refreshes the catalog. The
// room core picks the version up on its own schedule.
func (w *Workflows) ActivateGraph(ctx context.Context, version int64) (GraphCatalog, error) {
	if version < 1 {
		return GraphCatalog{}, fmt.Errorf("%w: graph version must be positive, got %d", ErrInvalidArgument, version)
	}
	_, catalog, err := mutateThenRefetch(ctx, w.logger, "graph activation",
		func(ctx context.Context) (roomapi.Empty, error) {
			return roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.roomEndpoint("graphs", "activate"),
				activateRequest{Version: version}, w.token())
		},
		w.RefreshGraphs,
	)
	if err == nil || IsRefreshError(err) {
		w.logger.Info("graph activation recorded", "version", version)
	}
	return catalog, err
}

// ListUsers returns every operator account.
func (w *Workflows) ListUsers(ctx context.Context) ([]User, error) {
	users, err := roomapi.GetJSON[userList](ctx, w.client, w.authEndpoint("users"), w.token())
	return []User(users), err
}

// CreateUser creates an account and returns the refreshed user list.
func (w *Workflows) CreateUser(ctx context.Context, user NewUser) ([]User, error) {
	if strings.TrimSpace(user.Username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	if user.Password == nil || user.Password.Len() == 0 {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}
	role, err := session.ParseRole(string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	return w.mutateUsers(ctx, "user creation", func(ctx context.Context) (roomapi.Empty, error) {
		return roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.authEndpoint("users"),
			createUserRequest{Username: user.Username, Password: user.Password.String(), Role: role}, w.token())
	})
}

// SetUserEnabled enables or disables username and returns the refreshed
// user list.
func (w *Workflows) SetUserEnabled(ctx context.Context, username string, enabled bool) ([]User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	return w.mutateUsers(ctx, "user enable/disable", func(ctx context.Context) (roomapi.Empty, error) {
		return roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.authEndpoint("users", username, "enabled"),
			setEnabledRequest{Enabled: enabled}, w.token())
	})
}

// ResetUserPassword sets a new password for username and returns the
// refreshed user list. password is borrowed.
func (w *Workflows) ResetUserPassword(ctx context.Context, username string, password *secret.Buffer) ([]User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidArgument)
	}
	if password == nil || password.Len() == 0 {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidArgument)
	}
	return w.mutateUsers(ctx, "password reset", func(ctx context.Context) (roomapi.Empty, error) {
		return roomapi.PostJSON[roomapi.Empty](ctx, w.client, w.authEndpoint("users", username, "password"),
			setPasswordRequest{Password: password.String()}, w.token())
	})
}

func (w *Workflows) mutateUsers(ctx context.Context, operation string, mutate func(context.Context) (roomapi.Empty, error)) ([]User, error) {
	_, users, err := mutateThenRefetch(ctx, w.logger, operation, mutate, w.ListUsers)
	if err == nil || IsRefreshError(err) {
		w.logger.Info("user change applied", "operation", operation)
	}
	return users, err
}
