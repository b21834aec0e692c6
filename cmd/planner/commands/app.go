// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/account"
	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/config"
	"github.com/bureau-foundation/planner/lib/session"
	"github.com/bureau-foundation/planner/lib/taskstore"
)

// PasswordVariable supplies the password to non-interactive runs.
const PasswordVariable = "PLANNER_PASSWORD"

// connectionParams are accepted by every command that needs the
// planner's state.
type connectionParams struct {
	Config  string `json:"-" flag:"config,c" desc:"configuration file" env:"PLANNER_CONFIG"`
	User    string `json:"-" flag:"user,u" desc:"planner user" env:"PLANNER_USER"`
	NoColor bool   `json:"-" flag:"no-color" desc:"disable colored output"`
}

// App holds the state shared by all commands of one process: the
// configuration, the account registry, and the session. It is opened
// lazily by the first command that needs it, so "planner version"
// touches nothing on disk.
type App struct {
	clock    clock.Clock
	location *time.Location
	stdout   *lockedWriter
	stderr   io.Writer
	prompter *cli.Prompter

	config   *config.Config
	logger   *slog.Logger
	accounts *account.Registry
	store    *taskstore.Store
	session  *session.Session
	styles   styles

	// interactive is set while the shell runs.
	interactive bool
}

// NewApp returns an unopened App using the real clock and local time.
func NewApp(stdin io.Reader, stdout, stderr io.Writer) *App {
	return newApp(stdin, stdout, stderr, clock.Real(), time.Local)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer, clk clock.Clock, location *time.Location) *App {
	return &App{
		clock:    clk,
		location: location,
		stdout:   &lockedWriter{w: stdout},
		stderr:   stderr,
		prompter: cli.NewPrompter(stdin, stderr),
	}
}

// lockedWriter serializes writes from commands and the reminder
// callback.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func (a *App) now() time.Time {
	return a.clock.Now().In(a.location)
}

// open loads configuration and wires the session. Later calls are
// no-ops.
func (a *App) open(params connectionParams) error {
	if a.session != nil {
		return nil
	}

	var cfg *config.Config
	var err error
	if params.Config != "" {
		cfg, err = config.LoadFile(params.Config)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return cli.Validation("loading configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid configuration:\n%w", err)
	}
	if err := cfg.EnsurePaths(); err != nil {
		return cli.Internal("%w", err)
	}

	logger := cli.NewCommandLogger(a.stderr, cfg.SlogLevel(), cfg.Log.Format)
	accounts, err := account.Open(cfg.Paths.Users, logger)
	if err != nil {
		return cli.Internal("opening account registry: %w", err)
	}
	store := taskstore.New(taskstore.Options{
		Directory: cfg.Paths.Tasks,
		Clock:     a.clock,
		Logger:    logger,
	})

	a.config = cfg
	a.logger = logger
	a.accounts = accounts
	a.store = store
	a.session = session.New(session.Options{
		Accounts:     accounts,
		Store:        store,
		Clock:        a.clock,
		Logger:       logger,
		PollInterval: cfg.PollInterval(),
		Notify:       a.notify,
	})

	renderer := lipgloss.NewRenderer(a.stdout.w)
	if params.NoColor || os.Getenv("NO_COLOR") != "" || !cli.IsTerminal(a.stdout.w) {
		renderer.SetColorProfile(termenv.Ascii)
	}
	a.styles = newStyles(renderer)

	logger.Debug("planner opened",
		"environment", cfg.Environment,
		"data", cfg.Paths.Data,
	)
	return nil
}

// login opens the App and makes params.User the active user. An
// already logged-in user is kept when no other user is named, and
// always inside the shell, where "login" switches users.
func (a *App) login(params connectionParams) error {
	if err := a.open(params); err != nil {
		return err
	}

	current := a.session.User()
	if current != "" && (a.interactive || params.User == "" || params.User == current) {
		return nil
	}
	if params.User == "" {
		return cli.Validation("no user given").WithHint("Pass --user or set PLANNER_USER.")
	}
	return a.authenticate(params.User)
}

// authenticate asks for username's password and logs in.
func (a *App) authenticate(username string) error {
	password, err := a.password(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return err
	}
	result, err := a.session.Login(username, password)
	switch result {
	case account.UserNotFound:
		return cli.NotFound("user %q is not registered", username).
			WithHint(fmt.Sprintf("Run 'planner register %s' first.", username))
	case account.IncorrectPassword:
		return cli.Forbidden("incorrect password for %s", username)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, taskstore.ErrPersist):
		a.logger.Warn("logged in, but saving missed reminders failed", "user", username, "error", err)
		return nil
	case errors.Is(err, taskstore.ErrLocked):
		return cli.Conflict("%w", err).WithHint("Another planner process is using this user's tasks.")
	default:
		return cli.Internal("logging in: %w", err)
	}
}

// password returns PLANNER_PASSWORD when set, otherwise prompts.
func (a *App) password(prompt string) (string, error) {
	if password := os.Getenv(PasswordVariable); password != "" {
		return password, nil
	}
	password, err := a.prompter.Password(prompt)
	if err != nil {
		return "", cli.Validation("reading password: %w", err)
	}
	return password, nil
}

// newPassword returns PLANNER_PASSWORD when set, otherwise prompts
// twice.
func (a *App) newPassword(prompt string) (string, error) {
	if password := os.Getenv(PasswordVariable); password != "" {
		return password, nil
	}
	password, err := a.prompter.NewPassword(prompt)
	if err != nil {
		return "", cli.Validation("%w", err)
	}
	return password, nil
}

// notify prints a fired reminder.
func (a *App) notify(title, message string) {
	fmt.Fprintf(a.stdout, "\n%s %s\n", a.styles.reminder.Render("["+title+"]"), message)
}

// Close logs out, stopping reminders and releasing the task log.
func (a *App) Close() error {
	if a.session == nil {
		return nil
	}
	return a.session.Logout()
}

// storeError categorizes a task store failure.
func storeError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, taskstore.ErrDuplicate):
		return &cli.CommandError{Category: cli.CategoryConflict, Err: err}
	case errors.Is(err, taskstore.ErrNotFound):
		return (&cli.CommandError{Category: cli.CategoryNotFound, Err: err}).
			WithHint("Run 'planner list' to see task ids.")
	case errors.Is(err, taskstore.ErrNoActiveUser):
		return &cli.CommandError{Category: cli.CategoryValidation, Err: err}
	default:
		return &cli.CommandError{Category: cli.CategoryInternal, Err: err}
	}
}
