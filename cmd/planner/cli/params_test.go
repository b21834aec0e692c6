// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Name     string        `flag:"name,n" desc:"task name"`
		Yes      bool          `flag:"yes,y" desc:"skip confirmation"`
		Duration int           `flag:"duration" desc:"minutes"`
		ID       int64         `flag:"id" desc:"task id"`
		Interval time.Duration `flag:"interval" desc:"poll interval"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	err := flagSet.Parse([]string{"-n", "Standup", "-y", "--duration", "15", "--id", "9000000000", "--interval", "45s"})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Name != "Standup" || !p.Yes || p.Duration != 15 || p.ID != 9000000000 || p.Interval != 45*time.Second {
		t.Errorf("params = %+v", p)
	}
	if p.Untagged != "" {
		t.Errorf("Untagged = %q, want empty", p.Untagged)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Priority string        `flag:"priority" default:"medium"`
		Duration int           `flag:"duration" default:"60"`
		ID       int64         `flag:"id" default:"-1"`
		Interval time.Duration `flag:"interval" default:"30s"`
		Color    bool          `flag:"color" default:"true"`
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if p.Priority != "medium" || p.Duration != 60 || p.ID != -1 || p.Interval != 30*time.Second || !p.Color {
		t.Errorf("defaults = %+v", p)
	}
}

func TestBindFlags_EnvDefault(t *testing.T) {
	type params struct {
		User string `flag:"user,u" desc:"planner user" env:"PLANNER_TEST_USER"`
	}

	t.Setenv("PLANNER_TEST_USER", "alice")
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse(nil); err != nil {
		t.Fatal(err)
	}
	if p.User != "alice" {
		t.Errorf("User = %q, want alice from the environment", p.User)
	}
	if usage := flagSet.Lookup("user").Usage; !strings.Contains(usage, "PLANNER_TEST_USER") {
		t.Errorf("usage %q does not mention the variable", usage)
	}

	if err := flagSet.Parse([]string{"--user", "bob"}); err != nil {
		t.Fatal(err)
	}
	if p.User != "bob" {
		t.Errorf("User = %q, flag must win over the environment", p.User)
	}
}

func TestBindFlags_EmbeddedStruct(t *testing.T) {
	type common struct {
		Config string `flag:"config" desc:"config file"`
	}
	type params struct {
		common
		JSONOutput
		Day string `flag:"day"`
	}
	var p params
	flagSet := FlagsFromParams("test", &p)
	if err := flagSet.Parse([]string{"--config", "/etc/planner.yaml", "--json", "--day", "2026-03-02"}); err != nil {
		t.Fatal(err)
	}
	if p.Config != "/etc/planner.yaml" || !p.OutputJSON || p.Day != "2026-03-02" {
		t.Errorf("params = %+v", p)
	}
}

func TestBindFlags_Errors(t *testing.T) {
	var notStruct string
	if err := BindFlags(&notStruct, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted a non-struct")
	}

	type unsupported struct {
		Rate float32 `flag:"rate"`
	}
	if err := BindFlags(&unsupported{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted float32")
	}

	type badDefault struct {
		Count int `flag:"count" default:"many"`
	}
	if err := BindFlags(&badDefault{}, pflag.NewFlagSet("x", pflag.ContinueOnError)); err == nil {
		t.Error("BindFlags accepted an unparseable default")
	}
}

func TestFlagsFromParams_PanicsOnBadParams(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FlagsFromParams did not panic")
		}
	}()
	FlagsFromParams("bad", struct{}{})
}
