// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import "time"

// At parses "2006-01-02 15:04" in the local time zone.
func At(t TB, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.Local)
	if err != nil {
		t.Fatalf("testutil.At(%q): %v", value, err)
	}
	return parsed
}
