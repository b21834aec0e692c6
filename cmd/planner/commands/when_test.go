// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"testing"

	"github.com/bureau-foundation/planner/lib/testutil"
)

func TestParseStart(t *testing.T) {
	now := testutil.At(t, "2026-03-02 08:00")
	tests := []struct {
		input string
		want  string
	}{
		{"2026-03-05 14:30", "2026-03-05 14:30"},
		{"  2026-03-05 14:30 ", "2026-03-05 14:30"},
		{"17:45", "2026-03-02 17:45"},
		{"2026-03-05", "2026-03-05 08:00"},
		{"tomorrow", "2026-03-03 08:00"},
		{"tomorrow 21:00", "2026-03-03 21:00"},
		{"+7 09:15", "2026-03-09 09:15"},
		{"today 12:00", "2026-03-02 12:00"},
	}
	for _, test := range tests {
		got, err := parseStart(test.input, now)
		if err != nil {
			t.Errorf("parseStart(%q): %v", test.input, err)
			continue
		}
		if want := testutil.At(t, test.want); !got.Equal(want) {
			t.Errorf("parseStart(%q) = %v, want %v", test.input, got, want)
		}
	}

	for _, bad := range []string{"", "noon", "2026-13-01", "tomorrow 25:00", "9am"} {
		if _, err := parseStart(bad, now); err == nil {
			t.Errorf("parseStart(%q) succeeded, want an error", bad)
		}
	}
}

func TestParseDay(t *testing.T) {
	now := testutil.At(t, "2026-03-01 23:30")
	tests := []struct {
		input string
		want  string
	}{
		{"", "2026-03-01 00:00"},
		{"Today", "2026-03-01 00:00"},
		{"yesterday", "2026-02-28 00:00"},
		{"tomorrow", "2026-03-02 00:00"},
		{"-1", "2026-02-28 00:00"},
		{"+31", "2026-04-01 00:00"},
		{"2026-12-25", "2026-12-25 00:00"},
	}
	for _, test := range tests {
		got, err := parseDay(test.input, now)
		if err != nil {
			t.Errorf("parseDay(%q): %v", test.input, err)
			continue
		}
		if want := testutil.At(t, test.want); !got.Equal(want) {
			t.Errorf("parseDay(%q) = %v, want %v", test.input, got, want)
		}
	}
	for _, bad := range []string{"someday", "+x", "03/02/2026"} {
		if _, err := parseDay(bad, now); err == nil {
			t.Errorf("parseDay(%q) succeeded, want an error", bad)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := parseID([]string{"42"}); err != nil || id != 42 {
		t.Fatalf("parseID(42) = %d, %v", id, err)
	}
	for _, bad := range [][]string{nil, {"1", "2"}, {"zero"}, {"0"}, {"-3"}} {
		if _, err := parseID(bad); err == nil {
			t.Errorf("parseID(%q) succeeded, want an error", bad)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[int32]string{
		15:   "15m",
		60:   "1h",
		90:   "1h30m",
		125:  "2h05m",
		1440: "24h",
	}
	for minutes, want := range tests {
		if got := formatMinutes(minutes); got != want {
			t.Errorf("formatMinutes(%d) = %q, want %q", minutes, got, want)
		}
	}
}

func TestCell(t *testing.T) {
	if got := cell("abc", 6); got != "abc   " {
		t.Errorf("cell pads to %q", got)
	}
	if got := cell("a long task name", 8); got != "a long… " {
		t.Errorf("cell truncates to %q", got)
	}
}
