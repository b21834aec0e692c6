// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source shared by the task store and the reminder
// scheduler. Production code injects Real(); tests inject Fake() and
// move time forward explicitly.
type Clock interface {
	// Now returns the current local wall-clock time.
	Now() time.Time

	// After returns a channel that receives the current time once d
	// has elapsed. If d <= 0 the channel is ready immediately.
	After(d time.Duration) <-chan time.Time

	// NewTimer returns a Timer that delivers the current time on C
	// once d has elapsed. Stop it when it is no longer needed.
	NewTimer(d time.Duration) *Timer
}

// Timer is a one-shot timer. Read the event from C.
type Timer struct {
	// C delivers the timer event. Buffered with capacity 1.
	C <-chan time.Time

	stopFunc func() bool
}

// Stop prevents the Timer from firing. It returns false if the timer
// has already fired or been stopped. Stop does not close C.
func (t *Timer) Stop() bool { return t.stopFunc() }

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTimer(d time.Duration) *Timer {
	timer := time.NewTimer(d)
	return &Timer{C: timer.C, stopFunc: timer.Stop}
}
