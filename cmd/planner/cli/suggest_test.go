// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"abc", "ab", 1},
		{"ab", "abc", 1},
		{"abc", "bac", 2},
		{"kitten", "sitting", 3},
		{"month", "mnoth", 2},
		{"export", "exprot", 2},
	}
	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
			if reverse := levenshtein(test.b, test.a); reverse != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, not symmetric", test.b, test.a, reverse)
			}
		})
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{
		{Name: "register"},
		{Name: "delete"},
		{Name: "exit", Aliases: []string{"quit"}},
	}
	tests := []struct {
		input string
		want  string
	}{
		{"regster", "register"},
		{"delte", "delete"},
		{"qiut", "quit"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	newFlags := func() *pflag.FlagSet {
		flagSet := pflag.NewFlagSet("add", pflag.ContinueOnError)
		flagSet.String("name", "", "")
		flagSet.StringP("remind", "r", "", "")
		flagSet.Bool("json", false, "")
		return flagSet
	}
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--nmae", "x"}, "--name"},
		{[]string{"--name", "x", "--remnid=1h"}, "--remind"},
		{[]string{"-r", "1h", "--jsn"}, "--json"},
		{[]string{"--unrelatedflag"}, ""},
		{[]string{"--", "--nmae"}, ""},
	}
	for _, test := range tests {
		if got := suggestFlag(test.args, newFlags()); got != test.want {
			t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
		}
	}
}
