// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies command errors so scripts can react to the
// exit status without parsing messages.
type ErrorCategory string

const (
	// CategoryValidation: bad flags, arguments, or task fields.
	CategoryValidation ErrorCategory = "validation"

	// CategoryNotFound: unknown task id or user.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryConflict: duplicate task, existing user, or a task log
	// locked by another process.
	CategoryConflict ErrorCategory = "conflict"

	// CategoryForbidden: wrong password.
	CategoryForbidden ErrorCategory = "forbidden"

	// CategoryInternal: I/O failures and anything unexpected.
	CategoryInternal ErrorCategory = "internal"
)

// exitCodes maps categories to process exit statuses. 1 is left for
// uncategorized errors.
var exitCodes = map[ErrorCategory]int{
	CategoryValidation: 2,
	CategoryNotFound:   3,
	CategoryConflict:   4,
	CategoryForbidden:  5,
	CategoryInternal:   1,
}

// CommandError is a categorized error with an optional hint printed
// after the message.
type CommandError struct {
	Category ErrorCategory
	Err      error
	Hint     string
}

func (e *CommandError) Error() string {
	if e.Hint == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + "\n\n" + e.Hint
}

func (e *CommandError) Unwrap() error { return e.Err }

// WithHint sets the hint and returns e.
func (e *CommandError) WithHint(hint string) *CommandError {
	e.Hint = hint
	return e
}

// Validation reports bad input.
func Validation(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound reports a missing task or user.
func NotFound(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryNotFound, Err: fmt.Errorf(format, args...)}
}

// Conflict reports a clash with existing state.
func Conflict(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryConflict, Err: fmt.Errorf(format, args...)}
}

// Forbidden reports failed authentication.
func Forbidden(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryForbidden, Err: fmt.Errorf(format, args...)}
}

// Internal reports an unexpected failure.
func Internal(format string, args ...any) *CommandError {
	return &CommandError{Category: CategoryInternal, Err: fmt.Errorf(format, args...)}
}

// ExitStatus returns the process exit status for err: the category's
// code for a CommandError, 1 for anything else, 0 for nil.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var commandError *CommandError
	if errors.As(err, &commandError) {
		if code, ok := exitCodes[commandError.Category]; ok {
			return code
		}
	}
	return 1
}
