// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
)

type remindParams struct {
	connectionParams
}

func remindCommand(app *App) *cli.Command {
	var params remindParams
	return &cli.Command{
		Name:    "remind",
		Summary: "Deliver reminders that are due now",
		Description: "Deliver every reminder that is due without waiting for the next " +
			"scheduled check.",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("remind", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if err := app.login(params.connectionParams); err != nil {
				return err
			}
			fired, err := app.session.CheckReminders()
			if err != nil {
				return cli.Internal("%w", err)
			}
			if fired == 0 {
				fmt.Fprintln(app.stdout, "No reminders due.")
			}
			return nil
		},
	}
}

// errLeaveShell ends the shell loop.
var errLeaveShell = errors.New("leave shell")

type shellParams struct {
	connectionParams
}

func shellCommand(app *App) *cli.Command {
	var params shellParams
	return &cli.Command{
		Name:    "shell",
		Summary: "Run commands interactively with reminders on",
		Description: `Log in once and read commands line by line. Reminders fire while the
shell is open and are printed between commands.

Every task command is available without the "planner" prefix, plus
"remind" to check for due reminders at once, "login <user>" to switch
users, and "exit" to leave.`,
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("shell", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			return runShell(app, &params)
		},
	}
}

func runShell(app *App, params *shellParams) error {
	if err := app.login(params.connectionParams); err != nil {
		return err
	}
	if err := app.session.StartReminders(); err != nil {
		return cli.Internal("%w", err)
	}
	app.interactive = true
	defer func() {
		app.interactive = false
		if err := app.session.Logout(); err != nil {
			app.logger.Error("logging out", "error", err)
		}
	}()

	root := shellRoot(app)
	fmt.Fprintf(app.stdout, "Logged in as %s. Reminders are on. Type \"help\" for commands.\n", app.session.User())

	for {
		line, err := app.prompter.Line(fmt.Sprintf("%s> ", app.session.User()))
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(app.stdout)
			return nil
		}
		if err != nil {
			return cli.Internal("reading command: %w", err)
		}

		args, err := splitCommandLine(line)
		if err != nil {
			fmt.Fprintf(app.stderr, "error: %v\n", err)
			continue
		}
		if len(args) > 0 && args[0] == root.Name {
			args = args[1:]
		}
		if len(args) == 0 {
			continue
		}

		err = root.Execute(args)
		var exitCoder interface{ ExitCode() int }
		switch {
		case errors.Is(err, errLeaveShell):
			return nil
		case err == nil, errors.As(err, &exitCoder):
		default:
			fmt.Fprintf(app.stderr, "error: %v\n", err)
		}
	}
}

// shellRoot is the command tree inside the shell.
func shellRoot(app *App) *cli.Command {
	subcommands := taskCommands(app)
	subcommands = append(subcommands,
		exportCommand(app),
		importCommand(app),
		remindCommand(app),
		&cli.Command{
			Name:    "login",
			Summary: "Switch to another user",
			Usage:   "login <username>",
			Run: func(args []string) error {
				username, err := usernameArg(args)
				if err != nil {
					return err
				}
				if username != app.session.User() {
					if err := app.authenticate(username); err != nil {
						return err
					}
				}
				if !app.session.RemindersRunning() {
					if err := app.session.StartReminders(); err != nil {
						return cli.Internal("%w", err)
					}
				}
				fmt.Fprintf(app.stdout, "Logged in as %s.\n", username)
				return nil
			},
		},
		&cli.Command{
			Name:    "whoami",
			Summary: "Print the logged-in user",
			Run: func([]string) error {
				fmt.Fprintln(app.stdout, app.session.User())
				return nil
			},
		},
		&cli.Command{
			Name:    "exit",
			Aliases: []string{"quit", "logout"},
			Summary: "Log out and leave the shell",
			Run: func([]string) error {
				return errLeaveShell
			},
		},
	)
	return &cli.Command{
		Name:        "planner",
		Summary:     "Planner shell",
		Subcommands: subcommands,
		HelpOutput:  app.stdout,
	}
}

// splitCommandLine splits a shell line into words. Single and double
// quotes group words; a backslash escapes the next character outside
// single quotes.
func splitCommandLine(line string) ([]string, error) {
	var words []string
	var current strings.Builder
	inWord := false
	var quote rune
	escaped := false

	for _, r := range line {
		switch {
		case escaped:
			current.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New("line ends with a backslash")
	}
	if inWord {
		words = append(words, current.String())
	}
	return words, nil
}
