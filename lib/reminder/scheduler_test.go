// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package reminder

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/task"
	"github.com/bureau-foundation/planner/lib/taskstore"
	"github.com/bureau-foundation/planner/lib/testutil"
)

const (
	interval = 30 * time.Second
	timeout  = 5 * time.Second
)

var morning = time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

type notice struct {
	title   string
	message string
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture returns a store for alice with one task whose reminder
// is due at morning+1m, and a scheduler on a fake clock.
func newFixture(t *testing.T) (*taskstore.Store, *Scheduler, *clock.FakeClock, int64) {
	t.Helper()
	clk := clock.Fake(morning)
	store := taskstore.New(taskstore.Options{Directory: t.TempDir(), Clock: clk, Logger: quietLogger()})
	t.Cleanup(func() { store.Close() })
	if err := store.SetActiveUser("alice"); err != nil {
		t.Fatalf("SetActiveUser: %v", err)
	}

	standup := task.New("Standup", morning.Add(16*time.Minute), 15*time.Minute, task.High, task.Study)
	standup.ApplyReminderOffset(15 * time.Minute)
	id, err := store.Add(standup)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	scheduler := New(store, clk, quietLogger(), interval)
	t.Cleanup(scheduler.Stop)
	return store, scheduler, clk, id
}

// tick advances past one interval and waits until the loop has
// finished that poll and is sleeping again.
func tick(clk *clock.FakeClock) {
	clk.WaitForTimers(1)
	clk.Advance(interval)
	clk.WaitForTimers(1)
}

func TestSchedulerFiresOnceAndPersists(t *testing.T) {
	store, scheduler, clk, id := newFixture(t)
	notices := make(chan notice, 10)
	scheduler.SetNotificationCallback(func(title, message string) {
		notices <- notice{title, message}
	})
	scheduler.Start()

	// First poll at 08:00:30: not due yet.
	tick(clk)
	testutil.RequireEmpty(t, notices, "reminder fired early")

	// Second poll at 08:01:00: due.
	tick(clk)
	got := testutil.RequireReceive(t, notices, timeout, "waiting for reminder")
	if got.title != "Reminder" {
		t.Errorf("title = %q, want Reminder", got.title)
	}
	if !strings.Contains(got.message, "Standup") || !strings.Contains(got.message, "2026-03-02 08:16") {
		t.Errorf("message = %q, want task name and start time", got.message)
	}

	stored, _ := store.Get(id)
	if !stored.Reminded {
		t.Fatal("fired reminder not marked in the store")
	}

	for range 5 {
		tick(clk)
	}
	testutil.RequireEmpty(t, notices, "reminder fired more than once")
}

func TestStopWakesSleepingLoopAndJoins(t *testing.T) {
	_, scheduler, clk, _ := newFixture(t)
	scheduler.Start()
	if !scheduler.Running() {
		t.Fatal("Running() = false after Start")
	}
	clk.WaitForTimers(1)

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()
	// No Advance: Stop must not wait out the interval.
	testutil.RequireClosed(t, stopped, timeout, "Stop did not return")

	if scheduler.Running() {
		t.Fatal("Running() = true after Stop")
	}
	scheduler.Stop()
}

func TestStartIsIdempotentAndRestartable(t *testing.T) {
	_, scheduler, clk, _ := newFixture(t)
	notices := make(chan notice, 10)
	scheduler.SetNotificationCallback(func(title, message string) {
		notices <- notice{title, message}
	})

	scheduler.Start()
	scheduler.Start()
	clk.WaitForTimers(1)
	scheduler.Stop()
	if pending := clk.PendingCount(); pending != 0 {
		t.Fatalf("stopped scheduler left %d timers registered", pending)
	}

	scheduler.Start()
	clk.WaitForTimers(1)
	if pending := clk.PendingCount(); pending != 1 {
		t.Fatalf("restarted scheduler has %d timers, want 1", pending)
	}
	clk.Advance(time.Minute)
	testutil.RequireReceive(t, notices, timeout, "restarted scheduler did not fire")
	scheduler.Stop()
	testutil.RequireEmpty(t, notices, "reminder fired by more than one loop")
}

func TestCallbackPanicDoesNotStopLoop(t *testing.T) {
	store, scheduler, clk, _ := newFixture(t)
	second := task.New("Review", morning.Add(time.Hour), 30*time.Minute, task.Low, task.Life)
	second.ApplyReminderOffset(59 * time.Minute)
	if _, err := store.Add(second); err != nil {
		t.Fatalf("Add: %v", err)
	}

	var mu sync.Mutex
	calls := 0
	notices := make(chan notice, 10)
	scheduler.SetNotificationCallback(func(title, message string) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			panic("display unavailable")
		}
		notices <- notice{title, message}
	})
	scheduler.Start()

	// 08:00:30: nothing. 08:01:00: both reminders are due; the first
	// callback panics, the second is still delivered.
	tick(clk)
	tick(clk)
	got := testutil.RequireReceive(t, notices, timeout, "second reminder after a panic")
	if !strings.Contains(got.message, "Review") {
		t.Fatalf("delivered %q, want the Review reminder", got.message)
	}

	// The loop is still alive and polling.
	tick(clk)
	if !scheduler.Running() {
		t.Fatal("scheduler stopped after callback panic")
	}
}

func TestNoCallbackStillMarksFired(t *testing.T) {
	store, scheduler, clk, id := newFixture(t)
	clk.Advance(time.Minute)
	if fired := scheduler.PollNow(); fired != 1 {
		t.Fatalf("PollNow() = %d, want 1", fired)
	}
	if stored, _ := store.Get(id); !stored.Reminded {
		t.Fatal("reminder not marked without a callback")
	}
}

// flakyClaimer fails a fixed number of times before delegating.
type flakyClaimer struct {
	mu       sync.Mutex
	failures int
	tasks    []task.Task
}

func (f *flakyClaimer) ClaimDueReminders(time.Time) ([]task.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("disk full")
	}
	claimed := f.tasks
	f.tasks = nil
	return claimed, nil
}

func TestClaimErrorIsRetriedNextInterval(t *testing.T) {
	clk := clock.Fake(morning)
	due := task.New("Pay rent", morning.Add(time.Hour), 5*time.Minute, task.High, task.Life)
	due.ApplyReminderOffset(time.Hour)
	claimer := &flakyClaimer{failures: 1, tasks: []task.Task{due}}

	scheduler := New(claimer, clk, quietLogger(), interval)
	defer scheduler.Stop()
	notices := make(chan notice, 10)
	scheduler.SetNotificationCallback(func(title, message string) {
		notices <- notice{title, message}
	})
	scheduler.Start()

	tick(clk)
	testutil.RequireEmpty(t, notices, "notified despite claim failure")
	tick(clk)
	testutil.RequireReceive(t, notices, timeout, "reminder after retry")
}

func TestNewDefaultsInterval(t *testing.T) {
	scheduler := New(&flakyClaimer{}, clock.Fake(morning), quietLogger(), 0)
	if scheduler.interval != DefaultInterval {
		t.Fatalf("interval = %v, want %v", scheduler.interval, DefaultInterval)
	}
}

func TestFormatNotification(t *testing.T) {
	standup := task.New("Standup", morning.Add(time.Hour), 15*time.Minute, task.High, task.Study)
	standup.ApplyReminderOffset(10 * time.Minute)
	title, message := FormatNotification(standup)
	if title != "Reminder" {
		t.Errorf("title = %q", title)
	}
	want := "Standup is coming up\nStarts: 2026-03-02 09:00  Reminder: 2026-03-02 08:50"
	if message != want {
		t.Errorf("message = %q, want %q", message, want)
	}
}
