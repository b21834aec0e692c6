// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Unassigned is the ID of a task that has not been stored.
const Unassigned int64 = -1

// Task is one scheduled entry.
type Task struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	StartTime      int64    `json:"start_time"`
	Duration       int32    `json:"duration"`
	Priority       Priority `json:"priority"`
	Category       Category `json:"category"`
	CustomCategory string   `json:"custom_category,omitempty"`
	ReminderTime   int64    `json:"reminder_time,omitempty"`
	ReminderOption string   `json:"reminder_option,omitempty"`
	Reminded       bool     `json:"reminded,omitempty"`
}

// New returns an unstored task with no reminder.
func New(name string, start time.Time, duration time.Duration, priority Priority, category Category) Task {
	return Task{
		ID:             Unassigned,
		Name:           name,
		StartTime:      start.Unix(),
		Duration:       int32(duration / time.Minute),
		Priority:       priority,
		Category:       category,
		ReminderOption: FormatReminderOffset(0),
	}
}

// Start returns the start instant in local time.
func (t Task) Start() time.Time { return time.Unix(t.StartTime, 0) }

// EndUnix returns the end instant as Unix seconds.
func (t Task) EndUnix() int64 { return t.StartTime + int64(t.Duration)*60 }

// End returns the end instant in local time. The interval is half
// open: a task ending at 10:00 is not active at 10:00.
func (t Task) End() time.Time { return time.Unix(t.EndUnix(), 0) }

// CategoryLabel returns the custom label for [Other] and the category
// name otherwise.
func (t Task) CategoryLabel() string {
	if t.Category == Other && t.CustomCategory != "" {
		return t.CustomCategory
	}
	return t.Category.String()
}

// Validation errors. Validate joins every violation it finds, so
// callers test with errors.Is.
var (
	ErrEmptyName           = errors.New("task: name is empty")
	ErrInvalidDuration     = errors.New("task: duration must be a positive number of minutes")
	ErrInvalidPriority     = errors.New("task: unknown priority")
	ErrInvalidCategory     = errors.New("task: unknown category")
	ErrEmptyCustomCategory = errors.New("task: custom category label is empty")
	ErrStartInPast         = errors.New("task: start time must be in the future")
	ErrReminderInPast      = errors.New("task: reminder time must be in the future")
	ErrReminderAfterStart  = errors.New("task: reminder time must be before the start time")
)

// Validate checks the fields of t as of now. A reminder that has
// already fired is history and is not checked against now.
func (t Task) Validate(now time.Time) error {
	var errs []error

	if strings.TrimSpace(t.Name) == "" {
		errs = append(errs, ErrEmptyName)
	}
	if t.Duration <= 0 {
		errs = append(errs, ErrInvalidDuration)
	}
	if !t.Priority.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidPriority, int32(t.Priority)))
	}
	if !t.Category.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidCategory, int32(t.Category)))
	} else if t.Category == Other && strings.TrimSpace(t.CustomCategory) == "" {
		errs = append(errs, ErrEmptyCustomCategory)
	}

	if t.ReminderTime != 0 && !t.Reminded {
		if t.ReminderTime <= now.Unix() {
			errs = append(errs, ErrReminderInPast)
		}
		if t.ReminderTime >= t.StartTime {
			errs = append(errs, ErrReminderAfterStart)
		}
	}

	return errors.Join(errs...)
}

// ValidateNew is Validate plus the rule that a newly created task
// must start in the future.
func (t Task) ValidateNew(now time.Time) error {
	err := t.Validate(now)
	if t.StartTime <= now.Unix() {
		err = errors.Join(err, ErrStartInPast)
	}
	return err
}

// Status describes where now falls relative to a task's interval.
type Status int

const (
	NotStarted Status = iota
	InProgress
	Finished
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Finished:
		return "finished"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Status reports whether the task has not started, is running, or is
// over at now.
func (t Task) Status(now time.Time) Status {
	current := now.Unix()
	switch {
	case current < t.StartTime:
		return NotStarted
	case current < t.EndUnix():
		return InProgress
	default:
		return Finished
	}
}

// ReminderState is the reminder column of the agenda.
type ReminderState int

const (
	NoReminder ReminderState = iota
	Reminded
	Pending
)

func (s ReminderState) String() string {
	switch s {
	case NoReminder:
		return "none"
	case Reminded:
		return "reminded"
	case Pending:
		return "pending"
	}
	return fmt.Sprintf("ReminderState(%d)", int(s))
}

// ReminderState reports whether t has no reminder, has fired, or is
// still waiting.
func (t Task) ReminderState() ReminderState {
	switch {
	case t.ReminderTime == 0:
		return NoReminder
	case t.Reminded:
		return Reminded
	default:
		return Pending
	}
}

// ReminderDue reports whether the scheduler should fire t at now.
func (t Task) ReminderDue(now time.Time) bool {
	return t.ReminderTime > 0 && t.ReminderTime <= now.Unix() && !t.Reminded
}
