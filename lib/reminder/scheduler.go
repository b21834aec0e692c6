// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package reminder runs the background loop that fires task
// reminders.
//
// A Scheduler wakes every interval, asks the store to claim the
// reminders that are due (the store marks them fired and persists
// that before returning), and then calls the notification callback
// once per claimed task. The callback runs outside the store's lock
// and may be slow. If it panics, the panic is logged and the loop
// keeps going. A reminder is never retried once claimed.
package reminder

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/task"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 30 * time.Second

// Claimer marks due reminders as fired, durably, and returns the
// tasks it marked. *taskstore.Store implements it.
type Claimer interface {
	ClaimDueReminders(now time.Time) ([]task.Task, error)
}

// NotifyFunc surfaces one fired reminder.
type NotifyFunc func(title, message string)

// Scheduler polls a Claimer on a fixed interval. The zero value is not
// usable; construct with New.
type Scheduler struct {
	claimer  Claimer
	clock    clock.Clock
	logger   *slog.Logger
	interval time.Duration

	mu     sync.Mutex
	notify NotifyFunc
	stop   chan struct{}
	done   chan struct{}
}

// New returns a stopped Scheduler. A non-positive interval selects
// DefaultInterval.
func New(claimer Claimer, clk clock.Clock, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		claimer:  claimer,
		clock:    clk,
		logger:   logger,
		interval: interval,
	}
}

// SetNotificationCallback installs fn. Set it before Start so no
// reminder fired after startup goes undelivered.
func (s *Scheduler) SetNotificationCallback(fn NotifyFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

func (s *Scheduler) callback() NotifyFunc {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify
}

// Start launches the poll loop. It does nothing if the loop is
// already running.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
	s.logger.Debug("reminder scheduler started", "interval", s.interval)
}

// Stop wakes the poll loop and waits for it to exit. After Stop
// returns no poll is in flight. Calling Stop on a stopped Scheduler
// does nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	s.logger.Debug("reminder scheduler stopped")
}

// Running reports whether the poll loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		timer := s.clock.NewTimer(s.interval)
		select {
		case <-timer.C:
		case <-stop:
			timer.Stop()
			return
		}

		// Stop may have raced with the timer.
		select {
		case <-stop:
			return
		default:
		}

		s.poll()
	}
}

// PollNow runs one poll cycle on the calling goroutine and returns the
// number of reminders fired.
func (s *Scheduler) PollNow() int {
	return s.poll()
}

func (s *Scheduler) poll() int {
	claimed, err := s.claimer.ClaimDueReminders(s.clock.Now())
	if err != nil {
		s.logger.Error("claiming due reminders failed, will retry", "error", err)
		return 0
	}
	if len(claimed) == 0 {
		return 0
	}

	notify := s.callback()
	for _, t := range claimed {
		s.logger.Info("reminder fired",
			"task_id", t.ID,
			"task", t.Name,
			"start", t.Start(),
		)
		if notify == nil {
			s.logger.Warn("no notification callback installed, reminder not shown", "task_id", t.ID)
			continue
		}
		title, message := FormatNotification(t)
		s.deliver(notify, t, title, message)
	}
	return len(claimed)
}

// deliver calls notify and contains a panic so one misbehaving
// callback cannot end the loop.
func (s *Scheduler) deliver(notify NotifyFunc, t task.Task, title, message string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.Error("notification callback panicked",
				"task_id", t.ID,
				"panic", recovered,
			)
		}
	}()
	notify(title, message)
}

// Layout of times in notification messages.
const timeLayout = "2006-01-02 15:04"

// FormatNotification builds the title and message for a fired
// reminder.
func FormatNotification(t task.Task) (title, message string) {
	message = fmt.Sprintf("%s is coming up\nStarts: %s  Reminder: %s",
		t.Name,
		t.Start().Format(timeLayout),
		time.Unix(t.ReminderTime, 0).Format(timeLayout),
	)
	return "Reminder", message
}
