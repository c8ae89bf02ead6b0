// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package control

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/sentient-engine/consoles/lib/roomtest"
	"github.com/sentient-engine/consoles/lib/secret"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/settings"
	"github.com/sentient-engine/consoles/roomapi"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newWorkflows(t *testing.T, role session.Role) (*Workflows, *roomtest.Server) {
	t.Helper()
	server := roomtest.New(t, roomtest.Config{})
	workflows := New(Config{
		Client: roomapi.NewClient(roomapi.ClientConfig{HTTPClient: server.HTTPClient()}),
		Settings: settings.Settings{
			AuthBaseURL:    server.URL,
			RoomAPIBaseURL: server.URL,
			RoomID:         server.RoomID(),
		},
		Tokens: staticToken(server.IssueToken("operator", role, time.Hour)),
	})
	return workflows, server
}

func testBuffer(t *testing.T, value string) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromString(value)
	if err != nil {
		t.Fatalf("creating buffer: %v", err)
	}
	t.Cleanup(func() { buffer.Close() })
	return buffer
}

const (
	graphsPath   = "/v8/room/clockwork/graphs"
	activePath   = "/v8/room/clockwork/graphs/active"
	activatePath = "/v8/room/clockwork/graphs/activate"
	usersPath    = "/v8/auth/users"
)

func TestRefreshStatusPreservesSnapshot(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleGM)
	document := `{"zeta":1,"alpha":{"nested":[true,null]},"dispatch":"PAUSED"}`
	server.SetStatus(document)

	snapshot, err := workflows.RefreshStatus(context.Background())
	if err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if got := string(snapshot.Raw); got != document+"\n" && got != document {
		t.Errorf("Raw = %q, want %q", got, document)
	}
	encoded, _ := json.Marshal(snapshot)
	if string(encoded) != document {
		t.Errorf("re-encoded snapshot = %s", encoded)
	}
}

func TestRefreshStatusRejectsNonObject(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleGM)
	server.SetStatus(`["not","an","object"]`)

	if _, err := workflows.RefreshStatus(context.Background()); !roomapi.IsDecodeError(err) {
		t.Fatalf("err = %v, want decode error", err)
	}
}

func TestPauseResumeDispatch(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleGM)

	if err := workflows.PauseDispatch(context.Background()); err != nil {
		t.Fatalf("PauseDispatch: %v", err)
	}
	if !server.DispatchPaused() {
		t.Error("dispatch not paused")
	}
	if err := workflows.ResumeDispatch(context.Background()); err != nil {
		t.Fatalf("ResumeDispatch: %v", err)
	}
	if server.DispatchPaused() {
		t.Error("dispatch still paused")
	}

	requests := server.RequestsTo(http.MethodPost, "/v8/room/clockwork/control")
	if len(requests) != 2 {
		t.Fatalf("control requests = %d, want 2", len(requests))
	}
	var body map[string]any
	if err := json.Unmarshal(requests[0].Body, &body); err != nil {
		t.Fatal(err)
	}
	if body["op"] != "PAUSE_DISPATCH" {
		t.Errorf("op = %v", body["op"])
	}
	if parameters, ok := body["parameters"].(map[string]any); !ok || len(parameters) != 0 {
		t.Errorf("parameters = %#v, want empty object", body["parameters"])
	}
}

func TestControlRejectedLeavesStateAlone(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleViewer)
	err := workflows.PauseDispatch(context.Background())
	if roomapi.StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401", err)
	}
	if server.DispatchPaused() {
		t.Error("rejected pause changed dispatch state")
	}
}

func TestActiveGraphNoContent(t *testing.T) {
	workflows, _ := newWorkflows(t, session.RoleTech)

	active, err := workflows.GetActiveGraph(context.Background())
	if err != nil {
		t.Fatalf("GetActiveGraph: %v", err)
	}
	if active != nil {
		t.Errorf("active = %+v, want nil", active)
	}
	if roomapi.IsDecodeError(err) {
		t.Error("204 reported as decode error")
	}
}

func TestActivateGraphRefetchesOnce(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	server.AddGraph(`{"schema":"v8","start":"a"}`)
	server.AddGraph(`{"schema":"v8","start":"b"}`)
	server.ResetRequests()

	catalog, err := workflows.ActivateGraph(context.Background(), 2)
	if err != nil {
		t.Fatalf("ActivateGraph: %v", err)
	}

	activations := server.RequestsTo(http.MethodPost, activatePath)
	if len(activations) != 1 {
		t.Fatalf("activation requests = %d, want 1", len(activations))
	}
	if string(activations[0].Body) != `{"version":2}` {
		t.Errorf("activation body = %s", activations[0].Body)
	}
	if lists := server.RequestsTo(http.MethodGet, graphsPath); len(lists) != 1 {
		t.Errorf("version list refreshes = %d, want 1", len(lists))
	}

	// The refresh comes after the activation.
	requests := server.Requests()
	if requests[0].Path != activatePath || requests[1].Path != graphsPath {
		t.Errorf("request order = %s, %s", requests[0].Path, requests[1].Path)
	}

	if !catalog.IsActive(2) || catalog.IsActive(1) {
		t.Errorf("catalog active = %+v", catalog.Active)
	}
	if len(catalog.Versions) != 2 {
		t.Errorf("catalog versions = %+v", catalog.Versions)
	}
}

func TestActivateGraphFailureSkipsRefetch(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	server.AddGraph(`{}`)
	server.SetLiveRun(true)
	server.ResetRequests()

	_, err := workflows.ActivateGraph(context.Background(), 1)
	if roomapi.StatusCode(err) != http.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
	if IsRefreshError(err) {
		t.Error("failed mutation reported as refresh error")
	}
	if lists := server.RequestsTo(http.MethodGet, graphsPath); len(lists) != 0 {
		t.Errorf("refetched after failed activation: %d", len(lists))
	}
}

func TestActivateGraphRefreshError(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	server.AddGraph(`{}`)
	server.FailNext(http.MethodGet, graphsPath, http.StatusServiceUnavailable)

	_, err := workflows.ActivateGraph(context.Background(), 1)
	var refreshErr *RefreshError
	if !errors.As(err, &refreshErr) {
		t.Fatalf("err = %v, want *RefreshError", err)
	}
	if refreshErr.Operation != "graph activation" {
		t.Errorf("Operation = %q", refreshErr.Operation)
	}
	if roomapi.StatusCode(err) != http.StatusServiceUnavailable {
		t.Errorf("wrapped status = %d", roomapi.StatusCode(err))
	}
	if server.ActiveVersion() != 1 {
		t.Error("activation was not applied")
	}
}

func TestActivateGraphRejectsNonPositive(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	if _, err := workflows.ActivateGraph(context.Background(), 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
	if len(server.Requests()) != 0 {
		t.Error("invalid activation reached the server")
	}
}

func TestUploadGraph(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	server.AddGraph(`{"first":true}`)
	server.ResetRequests()

	document := json.RawMessage(`{"schema":"v8","room_id":"clockwork","start":"boot","nodes":{"boot":{"kind":"NOOP"}}}`)
	upload, err := workflows.UploadGraph(context.Background(), document)
	if err != nil {
		t.Fatalf("UploadGraph: %v", err)
	}
	if upload.Version != 2 {
		t.Errorf("Version = %d, want 2", upload.Version)
	}
	stored, ok := server.Graph(2)
	if !ok || string(stored) != string(document) {
		t.Errorf("stored document = %s", stored)
	}
	if len(upload.Catalog.Versions) != 2 || upload.Catalog.Active != nil {
		t.Errorf("Catalog = %+v", upload.Catalog)
	}
	if lists := server.RequestsTo(http.MethodGet, graphsPath); len(lists) != 1 {
		t.Errorf("list refreshes = %d, want 1", len(lists))
	}
	if reads := server.RequestsTo(http.MethodGet, activePath); len(reads) != 1 {
		t.Errorf("active refreshes = %d, want 1", len(reads))
	}
}

func TestUploadGraphRejectsInvalidDocument(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	for _, document := range []string{"", "{not json"} {
		if _, err := workflows.UploadGraph(context.Background(), json.RawMessage(document)); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("UploadGraph(%q) err = %v, want ErrInvalidArgument", document, err)
		}
	}
	if len(server.Requests()) != 0 {
		t.Error("invalid upload reached the server")
	}
}

func TestUploadGraphRefreshErrorKeepsVersion(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleTech)
	server.FailNext(http.MethodGet, activePath, http.StatusBadGateway)

	upload, err := workflows.UploadGraph(context.Background(), json.RawMessage(`{"a":1}`))
	if !IsRefreshError(err) {
		t.Fatalf("err = %v, want *RefreshError", err)
	}
	if upload.Version != 1 {
		t.Errorf("Version = %d, want the applied version 1", upload.Version)
	}
}

func TestListGraphVersionsKeepsServerOrder(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleViewer)
	for range 3 {
		server.AddGraph(`{}`)
	}
	versions, err := workflows.ListGraphVersions(context.Background())
	if err != nil {
		t.Fatalf("ListGraphVersions: %v", err)
	}
	// The room API lists newest first.
	want := []int64{3, 2, 1}
	if len(versions) != len(want) {
		t.Fatalf("versions = %+v", versions)
	}
	for index, record := range versions {
		if record.Version != want[index] {
			t.Errorf("versions[%d] = %d, want %d", index, record.Version, want[index])
		}
	}
}

func TestUserAdministration(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleAdmin)
	server.AddUser("operator", "pw", session.RoleAdmin, true)
	server.ResetRequests()

	users, err := workflows.CreateUser(context.Background(), NewUser{
		Username: "tech2",
		Password: testBuffer(t, "s3cret"),
		Role:     session.RoleTech,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if len(users) != 2 || users[1].Username != "tech2" || users[1].Role != session.RoleTech || !users[1].Enabled {
		t.Fatalf("users after create = %+v", users)
	}
	if users[1].CreatedAt().IsZero() {
		t.Error("created_at_unix_ms not preserved")
	}

	users, err = workflows.SetUserEnabled(context.Background(), "tech2", false)
	if err != nil {
		t.Fatalf("SetUserEnabled: %v", err)
	}
	if users[1].Enabled {
		t.Error("tech2 still enabled")
	}

	if _, err := workflows.ResetUserPassword(context.Background(), "tech2", testBuffer(t, "n3w")); err != nil {
		t.Fatalf("ResetUserPassword: %v", err)
	}
	if password, _ := server.UserPassword("tech2"); password != "n3w" {
		t.Errorf("password = %q", password)
	}

	// Three mutations, each followed by exactly one list.
	if lists := server.RequestsTo(http.MethodGet, usersPath); len(lists) != 3 {
		t.Errorf("user list refreshes = %d, want 3", len(lists))
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleAdmin)
	server.AddUser("tech2", "pw", session.RoleTech, true)
	server.ResetRequests()

	_, err := workflows.CreateUser(context.Background(), NewUser{Username: "tech2", Password: testBuffer(t, "x"), Role: session.RoleTech})
	if roomapi.StatusCode(err) != http.StatusConflict {
		t.Fatalf("err = %v, want 409", err)
	}
	if lists := server.RequestsTo(http.MethodGet, usersPath); len(lists) != 0 {
		t.Error("refetched after failed create")
	}
}

func TestCreateUserValidation(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleAdmin)
	tests := []struct {
		name string
		user NewUser
	}{
		{"no username", NewUser{Password: testBuffer(t, "x"), Role: session.RoleGM}},
		{"no password", NewUser{Username: "a", Role: session.RoleGM}},
		{"bad role", NewUser{Username: "a", Password: testBuffer(t, "x"), Role: "ROOT"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := workflows.CreateUser(context.Background(), test.user); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
	if len(server.Requests()) != 0 {
		t.Error("invalid input reached the server")
	}
}

func TestUsernamesArePathEscaped(t *testing.T) {
	workflows, server := newWorkflows(t, session.RoleAdmin)
	server.AddUser("night shift", "pw", session.RoleGM, true)

	if _, err := workflows.SetUserEnabled(context.Background(), "night shift", false); err != nil {
		t.Fatalf("SetUserEnabled: %v", err)
	}
	if requests := server.RequestsTo(http.MethodPost, "/v8/auth/users/night%20shift/enabled"); len(requests) != 1 {
		t.Errorf("escaped requests = %d, want 1", len(requests))
	}
}

func TestListUsersForbiddenForNonAdmin(t *testing.T) {
	workflows, _ := newWorkflows(t, session.RoleTech)
	_, err := workflows.ListUsers(context.Background())
	if roomapi.StatusCode(err) != http.StatusForbidden {
		t.Fatalf("err = %v, want 403", err)
	}
}

func TestParseControlOp(t *testing.T) {
	for input, want := range map[string]ControlOp{"PAUSE_DISPATCH": OpPauseDispatch, "resume_dispatch": OpResumeDispatch} {
		if got, err := ParseControlOp(input); err != nil || got != want {
			t.Errorf("ParseControlOp(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseControlOp("RESET_SAFETY_LATCH"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestRecordValidation(t *testing.T) {
	if (GraphVersionRecord{Version: 0}).Validate() == nil {
		t.Error("version 0 accepted")
	}
	if (ActiveGraphState{ActiveVersion: -1}).Validate() == nil {
		t.Error("negative active version accepted")
	}
	if (User{}).Validate() == nil {
		t.Error("user without username accepted")
	}
}
