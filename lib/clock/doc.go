// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// The task store reads Now to decide which reminders are stale at
// load time, and the reminder scheduler sleeps between polls with
// After. Both accept a Clock so tests can drive them with a
// FakeClock:
//
//	c := clock.Fake(time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local))
//	scheduler := reminder.New(store, c, logger, 30*time.Second)
//	scheduler.Start()
//	c.WaitForTimers(1)          // the poll loop is now sleeping
//	c.Advance(30 * time.Second) // wake it deterministically
package clock
