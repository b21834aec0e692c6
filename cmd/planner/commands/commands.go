// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands implements the planner command tree: accounts,
// task editing, the day, week, and month views, archive export and
// import, and an interactive shell that keeps reminders running.
//
// Every command that touches state embeds connectionParams and calls
// App.open or App.login first. main builds one App per process and
// closes it on exit, which releases the active user's task log.
package commands

import (
	"fmt"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/version"
)

// Root returns the top-level command tree bound to app.
func Root(app *App) *cli.Command {
	subcommands := []*cli.Command{
		registerCommand(app),
		passwdCommand(app),
		deleteAccountCommand(app),
		usersCommand(app),
	}
	subcommands = append(subcommands, taskCommands(app)...)
	subcommands = append(subcommands,
		exportCommand(app),
		importCommand(app),
		shellCommand(app),
		versionCommand(app),
	)

	return &cli.Command{
		Name:    "planner",
		Summary: "Personal task planner with reminders and conflict detection",
		Description: `Personal task planner with reminders and conflict detection.

Tasks belong to a registered user and live in that user's task log.
Commands that read or change tasks log in first: pass --user or set
PLANNER_USER, and type the password or set PLANNER_PASSWORD.

Reminders fire while "planner shell" is running. Reminders that came
due while no shell was open are marked fired at the next login
without being shown.`,
		Subcommands: subcommands,
	}
}

// taskCommands are shared by the root and the shell.
func taskCommands(app *App) []*cli.Command {
	return []*cli.Command{
		addCommand(app),
		editCommand(app),
		deleteCommand(app),
		listCommand(app),
		dayCommand(app),
		weekCommand(app),
		monthCommand(app),
	}
}

func versionCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			fmt.Fprintf(app.stdout, "planner %s\n", version.Full())
			return nil
		},
	}
}
