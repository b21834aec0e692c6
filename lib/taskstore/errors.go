// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskstore

import "errors"

var (
	// ErrDuplicate means another task already has the same name and
	// start time.
	ErrDuplicate = errors.New("taskstore: a task with this name and start time already exists")

	// ErrNotFound means no task has the requested id.
	ErrNotFound = errors.New("taskstore: task not found")

	// ErrPersist wraps a failure to write the log. The in-memory
	// state has been restored to what it was before the call.
	ErrPersist = errors.New("taskstore: persisting tasks failed")

	// ErrNoActiveUser is returned by mutations before SetActiveUser.
	ErrNoActiveUser = errors.New("taskstore: no active user")

	// ErrLocked means another process holds the user's log.
	ErrLocked = errors.New("taskstore: task log is in use by another process")

	// ErrInvalidUsername rejects names that cannot be used as a file
	// name component.
	ErrInvalidUsername = errors.New("taskstore: invalid username")

	// ErrActiveUser is returned by RemoveUserData for the user whose
	// log is currently open.
	ErrActiveUser = errors.New("taskstore: user is active")
)
