// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/account"
	"github.com/bureau-foundation/planner/lib/taskstore"
)

// NewPasswordVariable supplies the new password to "planner passwd"
// in scripts.
const NewPasswordVariable = "PLANNER_NEW_PASSWORD"

var passwordPolicyHint = fmt.Sprintf(
	"Passwords need at least %d characters with an upper-case letter, a lower-case letter, and a digit.",
	account.MinPasswordLength)

// accountError categorizes an account registry failure.
func accountError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, account.ErrExists):
		return &cli.CommandError{Category: cli.CategoryConflict, Err: err}
	case errors.Is(err, account.ErrUnknownUser):
		return &cli.CommandError{Category: cli.CategoryNotFound, Err: err}
	case errors.Is(err, account.ErrIncorrectPassword):
		return &cli.CommandError{Category: cli.CategoryForbidden, Err: err}
	case errors.Is(err, account.ErrWeakPassword):
		return (&cli.CommandError{Category: cli.CategoryValidation, Err: err}).WithHint(passwordPolicyHint)
	case errors.Is(err, taskstore.ErrInvalidUsername):
		return (&cli.CommandError{Category: cli.CategoryValidation, Err: err}).
			WithHint("Usernames must not be empty or contain path separators.")
	case errors.Is(err, taskstore.ErrLocked):
		return (&cli.CommandError{Category: cli.CategoryConflict, Err: err}).
			WithHint("Another planner process is using this user's tasks.")
	default:
		return &cli.CommandError{Category: cli.CategoryInternal, Err: err}
	}
}

// usernameArg returns the single positional username.
func usernameArg(args []string) (string, error) {
	if len(args) != 1 {
		return "", cli.Validation("expected exactly one username, got %d arguments", len(args))
	}
	return args[0], nil
}

type registerParams struct {
	connectionParams
}

func registerCommand(app *App) *cli.Command {
	var params registerParams
	return &cli.Command{
		Name:    "register",
		Summary: "Create a user account",
		Description: "Create a user account. The password is read twice from the terminal, " +
			"or once from PLANNER_PASSWORD.\n\n" + passwordPolicyHint,
		Usage: "planner register <username> [flags]",
		Examples: []cli.Example{
			{Description: "Register interactively", Command: "planner register alice"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("register", &params)
		},
		Run: func(args []string) error {
			return runRegister(app, &params, args)
		},
	}
}

func runRegister(app *App, params *registerParams, args []string) error {
	username, err := usernameArg(args)
	if err != nil {
		return err
	}
	if err := app.open(params.connectionParams); err != nil {
		return err
	}
	if err := taskstore.ValidateUsername(username); err != nil {
		return accountError(err)
	}
	if app.accounts.Exists(username) {
		return accountError(fmt.Errorf("%w: %s", account.ErrExists, username))
	}

	password, err := app.newPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return err
	}
	if err := app.accounts.Register(username, password); err != nil {
		return accountError(err)
	}
	fmt.Fprintf(app.stdout, "Registered %s.\n", username)
	return nil
}

type passwdParams struct {
	connectionParams
}

func passwdCommand(app *App) *cli.Command {
	var params passwdParams
	return &cli.Command{
		Name:    "passwd",
		Summary: "Change a user's password",
		Description: "Change a user's password after confirming the current one. " +
			"Scripts may set PLANNER_PASSWORD and PLANNER_NEW_PASSWORD.",
		Usage: "planner passwd <username> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("passwd", &params)
		},
		Run: func(args []string) error {
			return runPasswd(app, &params, args)
		},
	}
}

func runPasswd(app *App, params *passwdParams, args []string) error {
	username, err := usernameArg(args)
	if err != nil {
		return err
	}
	if err := app.open(params.connectionParams); err != nil {
		return err
	}
	if !app.accounts.Exists(username) {
		return accountError(fmt.Errorf("%w: %s", account.ErrUnknownUser, username))
	}

	oldPassword, err := app.password(fmt.Sprintf("Current password for %s: ", username))
	if err != nil {
		return err
	}
	newPassword := os.Getenv(NewPasswordVariable)
	if newPassword == "" {
		newPassword, err = app.prompter.NewPassword("New password: ")
		if err != nil {
			return cli.Validation("%w", err)
		}
	}
	if err := app.session.ChangePassword(username, oldPassword, newPassword); err != nil {
		return accountError(err)
	}
	fmt.Fprintf(app.stdout, "Password changed for %s.\n", username)
	return nil
}

type deleteAccountParams struct {
	connectionParams
	Yes bool `json:"-" flag:"yes,y" desc:"skip the confirmation prompt"`
}

func deleteAccountCommand(app *App) *cli.Command {
	var params deleteAccountParams
	return &cli.Command{
		Name:    "delete-account",
		Summary: "Delete a user account and all of its tasks",
		Description: "Delete a user account together with its task log. The password is " +
			"required, and the username must be typed again unless --yes is given.",
		Usage: "planner delete-account <username> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("delete-account", &params)
		},
		Run: func(args []string) error {
			return runDeleteAccount(app, &params, args)
		},
	}
}

func runDeleteAccount(app *App, params *deleteAccountParams, args []string) error {
	username, err := usernameArg(args)
	if err != nil {
		return err
	}
	if err := app.open(params.connectionParams); err != nil {
		return err
	}
	if !app.accounts.Exists(username) {
		return accountError(fmt.Errorf("%w: %s", account.ErrUnknownUser, username))
	}

	password, err := app.password(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return err
	}
	if !params.Yes {
		answer, err := app.prompter.Line(fmt.Sprintf(
			"This deletes %s and every task they own. Type the username to confirm: ", username))
		if err != nil {
			return cli.Validation("reading confirmation: %w", err)
		}
		if strings.TrimSpace(answer) != username {
			return cli.Validation("confirmation did not match; nothing deleted")
		}
	}

	if err := app.session.DeleteAccount(username, password); err != nil {
		return accountError(err)
	}
	fmt.Fprintf(app.stdout, "Deleted %s.\n", username)
	return nil
}

type usersParams struct {
	connectionParams
	cli.JSONOutput
}

func usersCommand(app *App) *cli.Command {
	var params usersParams
	return &cli.Command{
		Name:    "users",
		Summary: "List registered users",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("users", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if err := app.open(params.connectionParams); err != nil {
				return err
			}
			users := app.accounts.Users()
			if done, err := params.EmitJSON(app.stdout, users); done {
				return err
			}
			for _, user := range users {
				fmt.Fprintln(app.stdout, user)
			}
			return nil
		},
	}
}
