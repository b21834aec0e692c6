// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session pairs an authenticated user with their task store
// and reminder scheduler.
//
// The scheduler never runs while the store's active user changes:
// Login, Logout, and DeleteAccount stop it first and restart it
// afterwards only if it was running and a user is still active.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/planner/lib/account"
	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/reminder"
	"github.com/bureau-foundation/planner/lib/taskstore"
)

// ErrNotLoggedIn is returned by operations that need a user.
var ErrNotLoggedIn = errors.New("session: not logged in")

// Options configures a Session.
type Options struct {
	Accounts     *account.Registry
	Store        *taskstore.Store
	Clock        clock.Clock
	Logger       *slog.Logger
	PollInterval time.Duration

	// Notify receives fired reminders. May be nil.
	Notify reminder.NotifyFunc
}

// Session is safe for concurrent use; its state changes are
// serialized.
type Session struct {
	accounts  *account.Registry
	store     *taskstore.Store
	scheduler *reminder.Scheduler
	logger    *slog.Logger

	mu   sync.Mutex
	user string
}

// New returns a logged-out Session.
func New(options Options) *Session {
	scheduler := reminder.New(options.Store, options.Clock, options.Logger, options.PollInterval)
	scheduler.SetNotificationCallback(options.Notify)
	return &Session{
		accounts:  options.Accounts,
		store:     options.Store,
		scheduler: scheduler,
		logger:    options.Logger,
	}
}

// Login authenticates username and makes it the store's active user.
// A result other than Success leaves the session unchanged. The error
// reports store failures: a lock held elsewhere keeps the previous
// user, while a failed stale-reminder correction (wrapping
// taskstore.ErrPersist) still completes the login.
func (s *Session) Login(username, password string) (account.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := s.accounts.Login(username, password)
	if result != account.Success {
		return result, nil
	}

	wasRunning := s.scheduler.Running()
	s.scheduler.Stop()

	err := s.store.SetActiveUser(username)
	if err == nil || errors.Is(err, taskstore.ErrPersist) {
		s.user = username
		s.logger.Info("logged in", "user", username)
	}
	if wasRunning && s.store.ActiveUser() != "" {
		s.scheduler.Start()
	}
	return result, err
}

// Logout stops reminders and releases the user's task log.
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logoutLocked()
}

func (s *Session) logoutLocked() error {
	s.scheduler.Stop()
	if s.user == "" {
		return nil
	}
	user := s.user
	s.user = ""
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("closing task log for %s: %w", user, err)
	}
	s.logger.Info("logged out", "user", user)
	return nil
}

// StartReminders starts the scheduler for the logged-in user.
func (s *Session) StartReminders() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return ErrNotLoggedIn
	}
	s.scheduler.Start()
	return nil
}

// StopReminders stops the scheduler and waits for its loop to exit.
func (s *Session) StopReminders() {
	s.scheduler.Stop()
}

// CheckReminders runs one reminder poll now and returns how many
// reminders fired.
func (s *Session) CheckReminders() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == "" {
		return 0, ErrNotLoggedIn
	}
	return s.scheduler.PollNow(), nil
}

// ChangePassword verifies the old password and sets a new one.
func (s *Session) ChangePassword(username, oldPassword, newPassword string) error {
	return s.accounts.ChangePassword(username, oldPassword, newPassword)
}

// DeleteAccount removes username's account and task data after
// checking the password. Deleting the logged-in user logs out first.
func (s *Session) DeleteAccount(username, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.accounts.Login(username, password) {
	case account.UserNotFound:
		return fmt.Errorf("%w: %s", account.ErrUnknownUser, username)
	case account.IncorrectPassword:
		return account.ErrIncorrectPassword
	}

	wasRunning := s.scheduler.Running()
	s.scheduler.Stop()
	if username == s.user {
		if err := s.logoutLocked(); err != nil {
			return err
		}
		wasRunning = false
	}
	if wasRunning {
		defer s.scheduler.Start()
	}

	if err := s.store.RemoveUserData(username); err != nil {
		return fmt.Errorf("removing task data for %s: %w", username, err)
	}
	if err := s.accounts.Delete(username); err != nil {
		return err
	}
	s.logger.Info("account deleted with its tasks", "user", username)
	return nil
}

// User returns the logged-in username, or "".
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Store returns the task store. Mutations require a logged-in user.
func (s *Session) Store() *taskstore.Store {
	return s.store
}

// RemindersRunning reports whether the scheduler loop is active.
func (s *Session) RemindersRunning() bool {
	return s.scheduler.Running()
}
