// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package task defines the planner's central entity and the rules
// that apply to a single task independent of storage.
//
// A Task is a time-boxed entry: a start instant (Unix seconds,
// interpreted in local wall-clock time), a duration in whole minutes,
// a priority, a category, and an optional reminder. IDs are assigned
// by lib/taskstore; a task that has not been stored carries
// [Unassigned].
//
// Priority and Category are plain enums. They marshal as short
// lower-case names ("high", "study") for JSON output and archives;
// the words shown to people are chosen by the CLI.
//
// Reminders are stored as an absolute ReminderTime plus a cached
// ReminderOption describing the offset ("15 minutes before"). The
// cached text survives an edit that moves the start time after the
// reminder has already fired, when ReminderTime can no longer be
// re-derived from a chosen offset.
package task
