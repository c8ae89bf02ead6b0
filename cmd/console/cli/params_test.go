// Copyright 2026 The Sentient Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_Types(t *testing.T) {
	var params struct {
		Name    string        `flag:"name"`
		Enabled bool          `flag:"enabled"`
		Count   int           `flag:"count,c"`
		Version int64         `flag:"version"`
		Window  time.Duration `flag:"window"`
		Roles   []string      `flag:"roles"`
		skipped string
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatal(err)
	}
	err := flagSet.Parse([]string{
		"--name", "tech1", "--enabled", "-c", "3", "--version", "12",
		"--window", "90s", "--roles", "ADMIN,TECH", "positional",
	})
	if err != nil {
		t.Fatal(err)
	}
	if params.Name != "tech1" || !params.Enabled || params.Count != 3 || params.Version != 12 ||
		params.Window != 90*time.Second || strings.Join(params.Roles, "|") != "ADMIN|TECH" {
		t.Errorf("params = %+v", params)
	}
	if args := flagSet.Args(); len(args) != 1 || args[0] != "positional" {
		t.Errorf("Args() = %v", args)
	}
	_ = params.skipped
}

func TestBindFlags_Defaults(t *testing.T) {
	var params struct {
		Reason string        `flag:"reason" default:"tech console request"`
		Force  bool          `flag:"force" default:"true"`
		Wait   time.Duration `flag:"wait" default:"2s"`
		Limit  int64         `flag:"limit" default:"50"`
	}
	flagSet := FlagsFromParams("defaults", &params)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if params.Reason != "tech console request" || !params.Force || params.Wait != 2*time.Second || params.Limit != 50 {
		t.Errorf("params = %+v", params)
	}
}

func TestBindFlags_EmbeddedJSONOutput(t *testing.T) {
	var params struct {
		JSONOutput
	}
	flagSet := FlagsFromParams("embedded", &params)
	if flagSet.Lookup("json") == nil {
		t.Fatal("--json not registered")
	}
	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatal(err)
	}
	if !params.OutputJSON {
		t.Error("OutputJSON not set")
	}
}

func TestBindFlags_Errors(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(struct{}{}, flagSet); err == nil {
		t.Error("non-pointer accepted")
	}
	number := 3
	if err := BindFlags(&number, flagSet); err == nil {
		t.Error("pointer to non-struct accepted")
	}
	var badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault, flagSet); err == nil {
		t.Error("unparseable default accepted")
	}
	var unsupported struct {
		Ratio float32 `flag:"ratio"`
	}
	if err := BindFlags(&unsupported, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("unsupported type accepted")
	}
}

func TestFlagsFromParams_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for invalid params")
		}
	}()
	FlagsFromParams("bad", "not a struct")
}
