// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the planner binary.
//
// A [Command] is a named node with optional [Command.Subcommands], a
// [pflag.FlagSet] factory, and a Run function. [Command.Execute]
// routes the first positional argument to a subcommand, parses flags,
// and prints structured help. Unknown commands and flags get a
// Levenshtein "did you mean" suggestion (see suggest.go).
//
// Parameter structs declare their flags with struct tags and are bound
// by [FlagsFromParams]; an env tag supplies the default from an
// environment variable. [JSONOutput] adds a --json flag.
//
// The same command tree serves one-shot invocations and the
// interactive shell, which feeds it one line at a time through a
// [Prompter].
package cli
