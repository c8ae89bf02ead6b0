// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/cmd/console/cli/clitest"
	"github.com/sentient-engine/consoles/lib/session"
	"github.com/sentient-engine/consoles/lib/testutil"
)

func TestLoginPersistsToken(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	harness.Server.AddUser("tech1", "correct horse", session.RoleTech, true)
	passwordFile := testutil.WritePasswordFile(t, "correct horse")

	if err := harness.Run(cli.LoginCommand(harness.Runtime), "tech1", "--password-file", passwordFile); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(harness.Stdout.String(), "Signed in as tech1 (TECH).") {
		t.Errorf("stdout = %q", harness.Stdout.String())
	}
	claims := session.Decode(harness.StoredToken(t))
	if claims == nil || claims.Sub != "tech1" || claims.Role != session.RoleTech {
		t.Errorf("stored claims = %+v", claims)
	}
}

func TestLoginPromptsWithoutPasswordFile(t *testing.T) {
	harness := clitest.New(t, "sentient-gm", "gamemaster")
	harness.Server.AddUser("gm1", "lantern", session.RoleGM, true)
	harness.Password = "lantern"

	if err := harness.Run(cli.LoginCommand(harness.Runtime), "gm1", "--json"); err != nil {
		t.Fatalf("login: %v", err)
	}
	var output struct {
		SignedIn bool   `json:"signed_in"`
		Sub      string `json:"sub"`
		Role     string `json:"role"`
		Expired  bool   `json:"expired"`
	}
	if err := json.Unmarshal(harness.Stdout.Bytes(), &output); err != nil {
		t.Fatalf("decoding %q: %v", harness.Stdout.String(), err)
	}
	if !output.SignedIn || output.Sub != "gm1" || output.Role != "GM" || output.Expired {
		t.Errorf("output = %+v", output)
	}
}

func TestLoginRejected(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	harness.Server.AddUser("tech1", "correct horse", session.RoleTech, true)
	harness.Server.AddUser("former", "pw", session.RoleTech, false)

	for _, test := range []struct{ username, password string }{
		{"tech1", "wrong"},
		{"former", "pw"},
		{"nobody", "pw"},
	} {
		err := harness.Run(cli.LoginCommand(harness.Runtime), test.username, "--password-file", testutil.WritePasswordFile(t, test.password))
		if clitest.Category(err) != cli.CategoryForbidden {
			t.Errorf("%s: err = %v, want forbidden", test.username, err)
		}
	}
	if token := harness.StoredToken(t); token != "" {
		t.Errorf("rejected logins stored a token: %q", token)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	err := harness.Run(cli.LoginCommand(harness.Runtime))
	if clitest.Category(err) != cli.CategoryValidation {
		t.Errorf("err = %v, want validation", err)
	}
	if len(harness.Server.Requests()) != 0 {
		t.Error("login without a username reached the server")
	}
}

func TestWhoAmIIsOffline(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	harness.SignIn(t, "tech1", session.RoleTech)

	if err := harness.Run(cli.WhoAmICommand(harness.Runtime)); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	output := harness.Stdout.String()
	for _, want := range []string{"User:     tech1", "Role:     TECH", "Room:     clockwork", "Auth:     " + harness.Server.URL} {
		if !strings.Contains(output, want) {
			t.Errorf("whoami output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "(expired)") {
		t.Errorf("fresh token shown as expired:\n%s", output)
	}
	if requests := harness.Server.Requests(); len(requests) != 0 {
		t.Errorf("whoami sent %d requests", len(requests))
	}
}

func TestWhoAmIShowsExpiry(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	harness.SignIn(t, "tech1", session.RoleTech)
	harness.Clock.Advance(13 * time.Hour)

	if err := harness.Run(cli.WhoAmICommand(harness.Runtime), "--json"); err != nil {
		t.Fatal(err)
	}
	var output struct {
		Expired  bool `json:"expired"`
		Settings struct {
			RoomID string `json:"room_id"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(harness.Stdout.Bytes(), &output); err != nil {
		t.Fatal(err)
	}
	if !output.Expired || output.Settings.RoomID != "clockwork" {
		t.Errorf("output = %+v", output)
	}
}

func TestLogoutThenWhoAmI(t *testing.T) {
	harness := clitest.New(t, "sentient-tech", "technician")
	harness.SignIn(t, "tech1", session.RoleTech)

	for range 2 {
		if err := harness.Run(cli.LogoutCommand(harness.Runtime)); err != nil {
			t.Fatalf("logout: %v", err)
		}
	}
	if token := harness.StoredToken(t); token != "" {
		t.Errorf("token survived logout: %q", token)
	}
	if err := harness.Run(cli.WhoAmICommand(harness.Runtime)); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(harness.Stdout.String(), "Not signed in.") {
		t.Errorf("whoami after logout = %q", harness.Stdout.String())
	}
}
