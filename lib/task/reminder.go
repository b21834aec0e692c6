// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidReminder is returned by ParseReminderOffset for text it
// cannot interpret.
var ErrInvalidReminder = errors.New("task: invalid reminder offset")

const day = 24 * time.Hour

// reminderPattern matches "15", "15m", "2 hours", "1 day before" and
// similar. A bare number means minutes.
var reminderPattern = regexp.MustCompile(
	`^(\d+)\s*(m|min|mins|minute|minutes|h|hr|hrs|hour|hours|d|day|days)?(?:\s+before)?$`)

// ParseReminderOffset converts a reminder description into the time
// between the reminder and the task's start. "none", "no reminder"
// and the empty string mean no reminder and return zero.
func ParseReminderOffset(text string) (time.Duration, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	switch normalized {
	case "", "none", "no reminder", "off":
		return 0, nil
	}

	match := reminderPattern.FindStringSubmatch(normalized)
	if match == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReminder, text)
	}
	count, err := strconv.Atoi(match[1])
	if err != nil || count <= 0 {
		return 0, fmt.Errorf("%w: %q must be a positive amount", ErrInvalidReminder, text)
	}

	unit := time.Minute
	switch match[2] {
	case "h", "hr", "hrs", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = day
	}
	return time.Duration(count) * unit, nil
}

// FormatReminderOffset renders an offset in the largest whole unit
// that represents it exactly: days, then hours, then minutes.
// Sub-minute remainders are dropped.
func FormatReminderOffset(offset time.Duration) string {
	minutes := int64(offset / time.Minute)
	if minutes <= 0 {
		return "none"
	}

	switch {
	case minutes%(24*60) == 0:
		return plural(minutes/(24*60), "day")
	case minutes%60 == 0:
		return plural(minutes/60, "hour")
	default:
		return plural(minutes, "minute")
	}
}

func plural(count int64, unit string) string {
	if count == 1 {
		return fmt.Sprintf("1 %s before", unit)
	}
	return fmt.Sprintf("%d %ss before", count, unit)
}

// ReminderOffset returns how long before the start the reminder is
// set, or zero when there is none.
func (t Task) ReminderOffset() time.Duration {
	if t.ReminderTime == 0 {
		return 0
	}
	return time.Duration(t.StartTime-t.ReminderTime) * time.Second
}

// ApplyReminderOffset sets the reminder relative to the current start
// time. A zero offset clears it. The fired flag is not touched.
func (t *Task) ApplyReminderOffset(offset time.Duration) {
	if offset <= 0 {
		t.ReminderTime = 0
		t.ReminderOption = FormatReminderOffset(0)
		return
	}
	t.ReminderTime = t.StartTime - int64(offset/time.Second)
	t.ReminderOption = FormatReminderOffset(offset)
}

// RefreshReminderOption recomputes the cached description from the
// stored reminder and start times. Used after an edit moves the start
// of a task whose reminder has already fired.
func (t *Task) RefreshReminderOption() {
	t.ReminderOption = FormatReminderOffset(t.ReminderOffset())
}
