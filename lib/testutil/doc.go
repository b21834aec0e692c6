// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern used when a test waits on a goroutine, such as a reminder
// callback firing or a scheduler loop exiting. They are the only place
// tests use real wall-clock timeouts; everything else runs on a
// clock.FakeClock.
//
// [At] builds local wall-clock instants from "2006-01-02 15:04"
// strings, which keeps day-boundary tests readable.
//
// All helpers call t.Fatalf on failure.
package testutil
