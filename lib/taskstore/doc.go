// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskstore owns the task list of the active user and its
// on-disk log.
//
// Each user has one log file, <directory>/<username>_tasks.dat, a
// plain sequence of binary records (see record.go). Add appends one
// record; Delete, Update and reminder claims rewrite the whole file
// through a temporary file and rename, because records are not
// individually addressable. A record cut short at the end of the file
// is dropped on load and every record before it is kept. The next
// write after such a load is a full rewrite, so new records never land
// behind the damaged tail.
//
// A Store is safe for concurrent use. One mutex covers the in-memory
// list, the id counter, and the file, and every operation holds it
// for its whole read-modify-persist sequence. List and Get return
// copies.
//
// Mutations are all-or-nothing with respect to memory: if persisting
// fails, the in-memory change is undone and the error wraps
// [ErrPersist]. The file itself is not repaired beyond what the next
// successful rewrite does.
//
// SetActiveUser also takes an advisory flock on
// <username>_tasks.lock so that two planner processes cannot edit the
// same user's log at once.
package taskstore
