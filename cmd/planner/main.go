// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/cmd/planner/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own output (like "day
		// --fail-on-conflict") return an error with the desired exit
		// code. Don't print a redundant "error:" line for those.
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(cli.ExitStatus(err))
	}
}

func run() error {
	app := commands.NewApp(os.Stdin, os.Stdout, os.Stderr)
	err := commands.Root(app).Execute(os.Args[1:])
	if closeErr := app.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
