// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sentient-engine/consoles/cmd/console/cli"
	"github.com/sentient-engine/consoles/cmd/console/cli/clitest"
	"github.com/sentient-engine/consoles/lib/session"
)

const (
	graphsPath   = "/v8/room/clockwork/graphs"
	activePath   = "/v8/room/clockwork/graphs/active"
	activatePath = "/v8/room/clockwork/graphs/activate"
)

func newHarness(t *testing.T) *clitest.Harness {
	harness := clitest.New(t, "sentient-creative", "creative")
	harness.SignIn(t, "designer", session.RoleTech)
	return harness
}

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.jsonc")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadStripsCommentsAndRefreshes(t *testing.T) {
	harness := newHarness(t)
	path := writeFile(t, `{
  // lobby scene
  "schema": "v8",
  "start": "boot",
  "nodes": {"boot": {"kind": "NOOP"},},
}`)

	if err := harness.Run(Command(harness.Runtime), "upload", path); err != nil {
		t.Fatalf("upload: %v", err)
	}
	stored, ok := harness.Server.Graph(1)
	if !ok {
		t.Fatal("version 1 not stored")
	}
	if want := `{"schema":"v8","start":"boot","nodes":{"boot":{"kind":"NOOP"}}}`; string(stored) != want {
		t.Errorf("stored = %s, want %s", stored, want)
	}
	if !strings.Contains(harness.Stdout.String(), "Uploaded graph version 1.") {
		t.Errorf("stdout = %q", harness.Stdout.String())
	}
	if harness.Server.ActiveVersion() != 0 {
		t.Error("upload activated the graph")
	}
	if got := len(harness.Server.RequestsTo(http.MethodGet, graphsPath)); got != 1 {
		t.Errorf("list refetches = %d, want 1", got)
	}
}

func TestUploadFromStdin(t *testing.T) {
	harness := newHarness(t)
	harness.Runtime.Stdin = strings.NewReader(`{"schema":"v8"}`)

	if err := harness.Run(Command(harness.Runtime), "upload", "-", "--json"); err != nil {
		t.Fatalf("upload: %v", err)
	}
	var output uploadOutput
	if err := json.Unmarshal(harness.Stdout.Bytes(), &output); err != nil {
		t.Fatal(err)
	}
	if output.Version != 1 || len(output.Catalog.Versions) != 1 {
		t.Errorf("output = %+v", output)
	}
}

func TestUploadRejectsBadDocumentsLocally(t *testing.T) {
	harness := newHarness(t)
	for _, contents := range []string{`[1, 2]`, `{"schema": }`, ``} {
		err := harness.Run(Command(harness.Runtime), "upload", writeFile(t, contents))
		if clitest.Category(err) != cli.CategoryValidation {
			t.Errorf("%q: err = %v, want validation", contents, err)
		}
	}
	if err := harness.Run(Command(harness.Runtime), "upload", filepath.Join(t.TempDir(), "missing.json")); clitest.Category(err) != cli.CategoryValidation {
		t.Errorf("missing file: err = %v, want validation", err)
	}
	if got := len(harness.Server.RequestsTo(http.MethodPost, graphsPath)); got != 0 {
		t.Errorf("bad documents reached the server %d times", got)
	}
}

func TestActivateRefetchesAndDescribesRestart(t *testing.T) {
	harness := newHarness(t)
	harness.Server.AddGraph(`{"schema":"v8"}`)
	harness.Server.AddGraph(`{"schema":"v8","start":"b"}`)

	if err := harness.Run(Command(harness.Runtime), "activate", "2"); err != nil {
		t.Fatalf("activate: %v", err)
	}
	if harness.Server.ActiveVersion() != 2 {
		t.Errorf("active = %d, want 2", harness.Server.ActiveVersion())
	}
	output := harness.Stdout.String()
	if !strings.Contains(output, "the room core loads it on restart") {
		t.Errorf("stdout = %q", output)
	}
	if strings.Contains(strings.ToLower(output), "now running") {
		t.Errorf("output claims immediate effect: %q", output)
	}
	if got := len(harness.Server.RequestsTo(http.MethodPost, activatePath)); got != 1 {
		t.Errorf("activate posts = %d, want 1", got)
	}
	if got := len(harness.Server.RequestsTo(http.MethodGet, graphsPath)); got != 1 {
		t.Errorf("list refetches = %d, want 1", got)
	}
	if got := len(harness.Server.RequestsTo(http.MethodGet, activePath)); got != 1 {
		t.Errorf("active refetches = %d, want 1", got)
	}
}

func TestActivateErrors(t *testing.T) {
	harness := newHarness(t)
	harness.Server.AddGraph(`{"schema":"v8"}`)

	for _, arg := range []string{"0", "-3", "seven"} {
		if err := harness.Run(Command(harness.Runtime), "activate", arg); clitest.Category(err) != cli.CategoryValidation {
			t.Errorf("activate %s: err = %v, want validation", arg, err)
		}
	}
	if got := len(harness.Server.RequestsTo(http.MethodPost, activatePath)); got != 0 {
		t.Errorf("invalid versions reached the server %d times", got)
	}

	if err := harness.Run(Command(harness.Runtime), "activate", "9"); clitest.Category(err) != cli.CategoryNotFound {
		t.Errorf("unknown version: err = %v, want not_found", err)
	}

	harness.Server.SetLiveRun(true)
	if err := harness.Run(Command(harness.Runtime), "activate", "1"); clitest.Category(err) != cli.CategoryConflict {
		t.Errorf("live run: err = %v, want conflict", err)
	}
	if harness.Server.ActiveVersion() != 0 {
		t.Error("activation applied during a live run")
	}
}

func TestActivateRefreshFailureStillReportsActivation(t *testing.T) {
	harness := newHarness(t)
	harness.Server.AddGraph(`{"schema":"v8"}`)
	harness.Server.FailNext(http.MethodGet, graphsPath, http.StatusInternalServerError)

	err := harness.Run(Command(harness.Runtime), "activate", "1")
	if clitest.Category(err) != cli.CategoryTransient || !strings.Contains(err.Error(), "change was applied") {
		t.Fatalf("err = %v, want transient refresh error", err)
	}
	if harness.Server.ActiveVersion() != 1 {
		t.Error("activation not applied")
	}
	if !strings.Contains(harness.Stdout.String(), "Version 1 is now the active graph") {
		t.Errorf("stdout = %q", harness.Stdout.String())
	}
}

func TestListMarksActiveInServerOrder(t *testing.T) {
	harness := newHarness(t)
	for range 3 {
		harness.Server.AddGraph(`{"schema":"v8"}`)
	}
	if err := harness.Run(Command(harness.Runtime), "activate", "2"); err != nil {
		t.Fatal(err)
	}

	if err := harness.Run(Command(harness.Runtime), "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(harness.Stdout.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("lines = %q", lines)
	}
	var order []string
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		order = append(order, fields[0])
		if active := strings.HasSuffix(line, "*"); active != (fields[0] == "2") {
			t.Errorf("line %q: active marker = %v", line, active)
		}
	}
	if strings.Join(order, ",") != "3,2,1" {
		t.Errorf("order = %v, want server order 3,2,1", order)
	}
}

func TestActiveWhenNoneActivated(t *testing.T) {
	harness := newHarness(t)
	if err := harness.Run(Command(harness.Runtime), "active"); err != nil {
		t.Fatalf("active: %v", err)
	}
	if !strings.Contains(harness.Stdout.String(), "No graph has been activated in room clockwork.") {
		t.Errorf("stdout = %q", harness.Stdout.String())
	}

	if err := harness.Run(Command(harness.Runtime), "active", "--json"); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(harness.Stdout.String()) != "null" {
		t.Errorf("json = %q, want null", harness.Stdout.String())
	}
}

func TestTemplateUsesConfiguredRoom(t *testing.T) {
	harness := newHarness(t)
	t.Setenv("SENTIENT_ROOM_ID", "vault")
	if err := harness.Run(Command(harness.Runtime), "template"); err != nil {
		t.Fatal(err)
	}
	var template map[string]any
	if err := json.Unmarshal(harness.Stdout.Bytes(), &template); err != nil {
		t.Fatal(err)
	}
	if template["room_id"] != "vault" || template["start"] != "boot" {
		t.Errorf("template = %v", template)
	}
	if len(harness.Server.Requests()) != 0 {
		t.Error("template contacted the server")
	}
}
