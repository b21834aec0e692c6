// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bureau-foundation/planner/lib/account"
	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/task"
	"github.com/bureau-foundation/planner/lib/taskstore"
	"github.com/bureau-foundation/planner/lib/testutil"
)

var morning = time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

type fixture struct {
	session   *Session
	store     *taskstore.Store
	accounts  *account.Registry
	clock     *clock.FakeClock
	directory string
	notices   chan string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := t.TempDir()
	clk := clock.Fake(morning)

	accounts, err := account.Open(filepath.Join(directory, "users.cbor"), logger)
	if err != nil {
		t.Fatalf("account.Open: %v", err)
	}
	for _, user := range []string{"alice", "bob"} {
		if err := accounts.Register(user, "Passw0rd"); err != nil {
			t.Fatalf("Register(%s): %v", user, err)
		}
	}

	store := taskstore.New(taskstore.Options{Directory: filepath.Join(directory, "tasks"), Clock: clk, Logger: logger})
	notices := make(chan string, 10)
	session := New(Options{
		Accounts:     accounts,
		Store:        store,
		Clock:        clk,
		Logger:       logger,
		PollInterval: 30 * time.Second,
		Notify:       func(title, message string) { notices <- message },
	})
	t.Cleanup(func() { session.Logout() })

	return &fixture{
		session:   session,
		store:     store,
		accounts:  accounts,
		clock:     clk,
		directory: directory,
		notices:   notices,
	}
}

func (f *fixture) login(t *testing.T, user string) {
	t.Helper()
	result, err := f.session.Login(user, "Passw0rd")
	if err != nil || result != account.Success {
		t.Fatalf("Login(%s) = %v, %v", user, result, err)
	}
}

func (f *fixture) addWithReminder(t *testing.T, name string, startIn, lead time.Duration) {
	t.Helper()
	item := task.New(name, morning.Add(startIn), 15*time.Minute, task.High, task.Study)
	item.ApplyReminderOffset(lead)
	if _, err := f.store.Add(item); err != nil {
		t.Fatalf("Add(%s): %v", name, err)
	}
}

func TestLoginResults(t *testing.T) {
	f := newFixture(t)

	if result, err := f.session.Login("carol", "Passw0rd"); result != account.UserNotFound || err != nil {
		t.Errorf("Login(unknown) = %v, %v", result, err)
	}
	if result, err := f.session.Login("alice", "wrong"); result != account.IncorrectPassword || err != nil {
		t.Errorf("Login(wrong password) = %v, %v", result, err)
	}
	if f.session.User() != "" || f.store.ActiveUser() != "" {
		t.Fatal("failed login changed the active user")
	}

	f.login(t, "alice")
	if f.session.User() != "alice" || f.store.ActiveUser() != "alice" {
		t.Fatalf("after login: session %q store %q", f.session.User(), f.store.ActiveUser())
	}
}

func TestSwitchingUsersRestartsReminders(t *testing.T) {
	f := newFixture(t)
	f.login(t, "bob")
	f.addWithReminder(t, "Bob's call", 11*time.Minute, 10*time.Minute)
	f.login(t, "alice")
	f.addWithReminder(t, "Alice's standup", 21*time.Minute, 20*time.Minute)

	if err := f.session.StartReminders(); err != nil {
		t.Fatalf("StartReminders: %v", err)
	}
	f.login(t, "bob")
	if !f.session.RemindersRunning() {
		t.Fatal("reminders not restarted after switching user")
	}

	// The stopped loop's timer stays registered with the fake clock
	// next to the restarted loop's. Only bob's store is polled.
	f.clock.WaitForTimers(2)
	f.clock.Advance(time.Minute)
	got := testutil.RequireReceive(t, f.notices, 5*time.Second, "bob's reminder")
	if want := "Bob's call is coming up"; len(got) < len(want) || got[:len(want)] != want {
		t.Fatalf("notice = %q, want bob's task", got)
	}
	f.session.StopReminders()
	testutil.RequireEmpty(t, f.notices, "alice's reminder fired while bob was active")
}

func TestLoginLockedKeepsPreviousUser(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")

	other := taskstore.New(taskstore.Options{
		Directory: filepath.Join(f.directory, "tasks"),
		Clock:     f.clock,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err := other.SetActiveUser("bob"); err != nil {
		t.Fatalf("other SetActiveUser: %v", err)
	}
	defer other.Close()

	result, err := f.session.Login("bob", "Passw0rd")
	if result != account.Success || !errors.Is(err, taskstore.ErrLocked) {
		t.Fatalf("Login(locked) = %v, %v; want success with ErrLocked", result, err)
	}
	if f.session.User() != "alice" || f.store.ActiveUser() != "alice" {
		t.Fatalf("active user = %q/%q, want alice", f.session.User(), f.store.ActiveUser())
	}
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")
	if err := f.session.StartReminders(); err != nil {
		t.Fatal(err)
	}

	if err := f.session.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if f.session.RemindersRunning() {
		t.Error("reminders still running after logout")
	}
	if f.session.User() != "" || f.store.ActiveUser() != "" {
		t.Error("user still active after logout")
	}
	if err := f.session.StartReminders(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("StartReminders after logout = %v, want ErrNotLoggedIn", err)
	}
	if _, err := f.session.CheckReminders(); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("CheckReminders after logout = %v, want ErrNotLoggedIn", err)
	}
	if err := f.session.Logout(); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestCheckReminders(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")
	f.addWithReminder(t, "Standup", 5*time.Minute, 5*time.Minute)

	fired, err := f.session.CheckReminders()
	if err != nil || fired != 1 {
		t.Fatalf("CheckReminders() = %d, %v; want 1", fired, err)
	}
	testutil.RequireReceive(t, f.notices, time.Second, "reminder from CheckReminders")
	if fired, _ := f.session.CheckReminders(); fired != 0 {
		t.Fatalf("second CheckReminders() = %d, want 0", fired)
	}
}

func TestDeleteActiveAccount(t *testing.T) {
	f := newFixture(t)
	f.login(t, "alice")
	f.addWithReminder(t, "Standup", time.Hour, 0)
	logPath := f.store.LogPath("alice")
	if err := f.session.StartReminders(); err != nil {
		t.Fatal(err)
	}

	if err := f.session.DeleteAccount("alice", "Passw0rd"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if f.session.User() != "" || f.session.RemindersRunning() {
		t.Error("deleting the active account did not log out")
	}
	if f.accounts.Exists("alice") {
		t.Error("account still registered")
	}
	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Errorf("task log still present: %v", err)
	}
}

func TestDeleteOtherAccountKeepsSession(t *testing.T) {
	f := newFixture(t)
	f.login(t, "bob")
	f.addWithReminder(t, "Bob's call", time.Hour, 0)
	f.login(t, "alice")
	if err := f.session.StartReminders(); err != nil {
		t.Fatal(err)
	}

	if err := f.session.DeleteAccount("bob", "Passw0rd"); err != nil {
		t.Fatalf("DeleteAccount: %v", err)
	}
	if f.session.User() != "alice" || !f.session.RemindersRunning() {
		t.Errorf("session after deleting bob: user %q running %v", f.session.User(), f.session.RemindersRunning())
	}
	if _, err := os.Stat(f.store.LogPath("bob")); !os.IsNotExist(err) {
		t.Errorf("bob's log still present: %v", err)
	}
}

func TestDeleteAccountChecksPassword(t *testing.T) {
	f := newFixture(t)
	if err := f.session.DeleteAccount("alice", "nope"); !errors.Is(err, account.ErrIncorrectPassword) {
		t.Fatalf("DeleteAccount(wrong password) = %v, want ErrIncorrectPassword", err)
	}
	if err := f.session.DeleteAccount("carol", "Passw0rd"); !errors.Is(err, account.ErrUnknownUser) {
		t.Fatalf("DeleteAccount(unknown) = %v, want ErrUnknownUser", err)
	}
	if !f.accounts.Exists("alice") {
		t.Fatal("alice removed despite wrong password")
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	if err := f.session.ChangePassword("alice", "Passw0rd", "N3wSecret"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if result, _ := f.session.Login("alice", "N3wSecret"); result != account.Success {
		t.Fatalf("Login with new password = %v", result)
	}
}
