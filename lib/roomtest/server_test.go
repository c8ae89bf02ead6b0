// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package roomtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sentient-engine/consoles/lib/clock"
	"github.com/sentient-engine/consoles/lib/session"
)

func post(t *testing.T, server *Server, path, token, body string) *http.Response {
	t.Helper()
	request, err := http.NewRequest(http.MethodPost, server.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := server.HTTPClient().Do(request)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { response.Body.Close() })
	return response
}

func TestLoginIssuesDecodableToken(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	server := New(t, Config{Clock: fakeClock})
	server.AddUser("tech1", "x", session.RoleTech, true)

	response := post(t, server, "/v8/auth/login", "", `{"username":"tech1","password":"x"}`)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", response.StatusCode)
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(response.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	claims := session.Decode(body.AccessToken)
	if claims == nil {
		t.Fatal("issued token does not decode")
	}
	want := session.Claims{
		Sub:  "tech1",
		Role: session.RoleTech,
		Iat:  uint64(fakeClock.Now().Unix()),
		Exp:  uint64(fakeClock.Now().Add(TokenLifetime).Unix()),
	}
	if *claims != want {
		t.Errorf("claims = %+v, want %+v", *claims, want)
	}
}

func TestLoginRejections(t *testing.T) {
	server := New(t, Config{})
	server.AddUser("tech1", "x", session.RoleTech, true)
	server.AddUser("gone", "x", session.RoleGM, false)

	for _, body := range []string{
		`{"username":"tech1","password":"wrong"}`,
		`{"username":"nobody","password":"x"}`,
		`{"username":"gone","password":"x"}`,
	} {
		if response := post(t, server, "/v8/auth/login", "", body); response.StatusCode != http.StatusUnauthorized {
			t.Errorf("login %s: status = %d, want 401", body, response.StatusCode)
		}
	}
}

func TestRoleGating(t *testing.T) {
	server := New(t, Config{})
	gm := server.IssueToken("gm1", session.RoleGM, time.Hour)
	admin := server.IssueToken("root", session.RoleAdmin, time.Hour)

	if response := post(t, server, "/v8/room/clockwork/safety/reset/request", gm, `{"reason":"x"}`); response.StatusCode != http.StatusUnauthorized {
		t.Errorf("GM reset request: status = %d, want 401", response.StatusCode)
	}
	if response := post(t, server, "/v8/auth/users", gm, `{"username":"a","password":"b","role":"GM"}`); response.StatusCode != http.StatusForbidden {
		t.Errorf("GM user create: status = %d, want 403", response.StatusCode)
	}
	if response := post(t, server, "/v8/auth/users", admin, `{"username":"a","password":"b","role":"GM"}`); response.StatusCode != http.StatusCreated {
		t.Errorf("admin user create: status = %d, want 201", response.StatusCode)
	}
	if response := post(t, server, "/v8/auth/users", admin, `{"username":"a","password":"b","role":"GM"}`); response.StatusCode != http.StatusConflict {
		t.Errorf("duplicate user create: status = %d, want 409", response.StatusCode)
	}
	if response := post(t, server, "/v8/room/elsewhere/control", admin, `{"op":"PAUSE_DISPATCH","parameters":{}}`); response.StatusCode != http.StatusNotFound {
		t.Errorf("unknown room: status = %d, want 404", response.StatusCode)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	fakeClock := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	server := New(t, Config{Clock: fakeClock})
	token := server.IssueToken("tech1", session.RoleTech, time.Minute)
	fakeClock.Advance(2 * time.Minute)

	if response := post(t, server, "/v8/room/clockwork/control", token, `{"op":"PAUSE_DISPATCH","parameters":{}}`); response.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", response.StatusCode)
	}
}

func TestFailNextAppliesOnce(t *testing.T) {
	server := New(t, Config{})
	token := server.IssueToken("tech1", session.RoleTech, time.Hour)
	server.FailNext(http.MethodPost, "/v8/room/clockwork/control", http.StatusServiceUnavailable)

	body := `{"op":"PAUSE_DISPATCH","parameters":{}}`
	if response := post(t, server, "/v8/room/clockwork/control", token, body); response.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("first: status = %d, want 503", response.StatusCode)
	}
	if response := post(t, server, "/v8/room/clockwork/control", token, body); response.StatusCode != http.StatusAccepted {
		t.Errorf("second: status = %d, want 202", response.StatusCode)
	}
	if got := len(server.RequestsTo(http.MethodPost, "/v8/room/clockwork/control")); got != 2 {
		t.Errorf("recorded %d requests, want 2", got)
	}
}
