// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

func validTask() Task {
	t := New("Standup", now.Add(time.Hour), 15*time.Minute, High, Study)
	t.ApplyReminderOffset(15 * time.Minute)
	return t
}

func TestNewDefaults(t *testing.T) {
	got := New("Review", now, 30*time.Minute, Low, Life)
	if got.ID != Unassigned {
		t.Errorf("ID = %d, want %d", got.ID, Unassigned)
	}
	if got.Duration != 30 {
		t.Errorf("Duration = %d, want 30", got.Duration)
	}
	if got.ReminderTime != 0 || got.ReminderOption != "none" {
		t.Errorf("reminder = (%d, %q), want (0, none)", got.ReminderTime, got.ReminderOption)
	}
	if !got.End().Equal(now.Add(30 * time.Minute)) {
		t.Errorf("End() = %v, want %v", got.End(), now.Add(30*time.Minute))
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Task)
		want   []error
	}{
		{name: "valid", mutate: func(*Task) {}},
		{name: "blank name", mutate: func(t *Task) { t.Name = "  " }, want: []error{ErrEmptyName}},
		{name: "zero duration", mutate: func(t *Task) { t.Duration = 0 }, want: []error{ErrInvalidDuration}},
		{name: "bad priority", mutate: func(t *Task) { t.Priority = 7 }, want: []error{ErrInvalidPriority}},
		{name: "bad category", mutate: func(t *Task) { t.Category = -1 }, want: []error{ErrInvalidCategory}},
		{
			name:   "other without label",
			mutate: func(t *Task) { t.Category = Other },
			want:   []error{ErrEmptyCustomCategory},
		},
		{
			name:   "reminder in past",
			mutate: func(t *Task) { t.ReminderTime = now.Unix() },
			want:   []error{ErrReminderInPast},
		},
		{
			name:   "reminder at start",
			mutate: func(t *Task) { t.ReminderTime = t.StartTime },
			want:   []error{ErrReminderAfterStart},
		},
		{
			name: "fired reminder is not revalidated",
			mutate: func(t *Task) {
				t.ReminderTime = now.Add(-time.Hour).Unix()
				t.Reminded = true
			},
		},
		{
			name: "several violations reported together",
			mutate: func(t *Task) {
				t.Name = ""
				t.Duration = -5
			},
			want: []error{ErrEmptyName, ErrInvalidDuration},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			candidate := validTask()
			test.mutate(&candidate)
			err := candidate.Validate(now)
			if len(test.want) == 0 {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			for _, want := range test.want {
				if !errors.Is(err, want) {
					t.Errorf("Validate() = %v, want it to include %v", err, want)
				}
			}
		})
	}
}

func TestValidateNewRejectsPastStart(t *testing.T) {
	candidate := New("Late", now.Add(-time.Minute), time.Hour, Medium, Life)
	if err := candidate.Validate(now); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if err := candidate.ValidateNew(now); !errors.Is(err, ErrStartInPast) {
		t.Fatalf("ValidateNew() = %v, want ErrStartInPast", err)
	}
	if err := validTask().ValidateNew(now); err != nil {
		t.Fatalf("ValidateNew() on a future task = %v, want nil", err)
	}
}

func TestStatus(t *testing.T) {
	candidate := New("Focus", now, time.Hour, Medium, Study)
	tests := []struct {
		at   time.Time
		want Status
	}{
		{now.Add(-time.Second), NotStarted},
		{now, InProgress},
		{now.Add(59 * time.Minute), InProgress},
		{now.Add(time.Hour), Finished},
	}
	for _, test := range tests {
		if got := candidate.Status(test.at); got != test.want {
			t.Errorf("Status(%v) = %v, want %v", test.at.Format("15:04:05"), got, test.want)
		}
	}
}

func TestReminderStateAndDue(t *testing.T) {
	candidate := validTask()
	if got := candidate.ReminderState(); got != Pending {
		t.Fatalf("ReminderState() = %v, want pending", got)
	}
	reminderAt := time.Unix(candidate.ReminderTime, 0)
	if candidate.ReminderDue(reminderAt.Add(-time.Second)) {
		t.Error("ReminderDue() before the reminder time = true")
	}
	if !candidate.ReminderDue(reminderAt) {
		t.Error("ReminderDue() at the reminder time = false")
	}

	candidate.Reminded = true
	if candidate.ReminderDue(reminderAt.Add(time.Hour)) {
		t.Error("ReminderDue() after firing = true")
	}
	if got := candidate.ReminderState(); got != Reminded {
		t.Fatalf("ReminderState() = %v, want reminded", got)
	}

	candidate.ApplyReminderOffset(0)
	if got := candidate.ReminderState(); got != NoReminder {
		t.Fatalf("ReminderState() = %v, want none", got)
	}
}

func TestParseReminderOffset(t *testing.T) {
	tests := []struct {
		text string
		want time.Duration
	}{
		{"", 0},
		{"none", 0},
		{"No reminder", 0},
		{"15", 15 * time.Minute},
		{"15m", 15 * time.Minute},
		{"15 minutes before", 15 * time.Minute},
		{"1 minute before", time.Minute},
		{"2h", 2 * time.Hour},
		{"2 hours before", 2 * time.Hour},
		{"1 day before", 24 * time.Hour},
		{"3d", 72 * time.Hour},
	}
	for _, test := range tests {
		got, err := ParseReminderOffset(test.text)
		if err != nil {
			t.Errorf("ParseReminderOffset(%q) error: %v", test.text, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParseReminderOffset(%q) = %v, want %v", test.text, got, test.want)
		}
	}

	for _, bad := range []string{"0", "-5", "soon", "5 weeks before", "m15"} {
		if _, err := ParseReminderOffset(bad); !errors.Is(err, ErrInvalidReminder) {
			t.Errorf("ParseReminderOffset(%q) = %v, want ErrInvalidReminder", bad, err)
		}
	}
}

func TestFormatReminderOffset(t *testing.T) {
	tests := []struct {
		offset time.Duration
		want   string
	}{
		{0, "none"},
		{30 * time.Second, "none"},
		{time.Minute, "1 minute before"},
		{15 * time.Minute, "15 minutes before"},
		{90 * time.Minute, "90 minutes before"},
		{time.Hour, "1 hour before"},
		{5 * time.Hour, "5 hours before"},
		{24 * time.Hour, "1 day before"},
		{48 * time.Hour, "2 days before"},
	}
	for _, test := range tests {
		if got := FormatReminderOffset(test.offset); got != test.want {
			t.Errorf("FormatReminderOffset(%v) = %q, want %q", test.offset, got, test.want)
		}
		if test.want == "none" {
			continue
		}
		parsed, err := ParseReminderOffset(test.want)
		if err != nil || parsed != test.offset {
			t.Errorf("ParseReminderOffset(%q) = %v, %v; want %v", test.want, parsed, err, test.offset)
		}
	}
}

func TestRefreshReminderOptionAfterMove(t *testing.T) {
	candidate := validTask()
	candidate.Reminded = true
	candidate.StartTime += 3600
	candidate.RefreshReminderOption()
	if candidate.ReminderOption != "75 minutes before" {
		t.Fatalf("ReminderOption = %q, want %q", candidate.ReminderOption, "75 minutes before")
	}
}

func TestEnumText(t *testing.T) {
	for _, text := range []string{"HIGH", "h", "high"} {
		if got, err := ParsePriority(text); err != nil || got != High {
			t.Errorf("ParsePriority(%q) = %v, %v; want high", text, got, err)
		}
	}
	if _, err := ParsePriority("urgent"); !errors.Is(err, ErrInvalidPriority) {
		t.Errorf("ParsePriority(urgent) = %v, want ErrInvalidPriority", err)
	}
	if got, err := ParseCategory("Entertainment"); err != nil || got != Entertainment {
		t.Errorf("ParseCategory(Entertainment) = %v, %v", got, err)
	}

	data, err := json.Marshal(validTask())
	if err != nil {
		t.Fatalf("json.Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"priority":"high"`) || !strings.Contains(string(data), `"category":"study"`) {
		t.Fatalf("json.Marshal() = %s, want named priority and category", data)
	}
	var decoded Task
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}
	if decoded != validTask() {
		t.Fatalf("round trip = %+v, want %+v", decoded, validTask())
	}
}

func TestCategoryLabel(t *testing.T) {
	candidate := validTask()
	if got := candidate.CategoryLabel(); got != "study" {
		t.Errorf("CategoryLabel() = %q, want study", got)
	}
	candidate.Category = Other
	candidate.CustomCategory = "errands"
	if got := candidate.CategoryLabel(); got != "errands" {
		t.Errorf("CategoryLabel() = %q, want errands", got)
	}
}
