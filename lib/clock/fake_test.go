// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(90 * time.Second)
	want := epoch.Add(90 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFiresOnAdvance(t *testing.T) {
	clock := Fake(epoch)
	channel := clock.After(30 * time.Second)

	clock.Advance(29 * time.Second)
	select {
	case <-channel:
		t.Fatal("After fired before its deadline")
	default:
	}

	clock.Advance(time.Second)
	select {
	case fired := <-channel:
		if want := epoch.Add(30 * time.Second); !fired.Equal(want) {
			t.Fatalf("fired at %v, want %v", fired, want)
		}
	default:
		t.Fatal("After did not fire at its deadline")
	}
	if clock.PendingCount() != 0 {
		t.Fatalf("PendingCount() = %d, want 0", clock.PendingCount())
	}
}

func TestFakeClockAfterNonPositive(t *testing.T) {
	clock := Fake(epoch)
	for _, duration := range []time.Duration{0, -time.Second} {
		select {
		case <-clock.After(duration):
		default:
			t.Fatalf("After(%v) should be ready immediately", duration)
		}
	}
	if clock.PendingCount() != 0 {
		t.Fatalf("PendingCount() = %d, want 0", clock.PendingCount())
	}
}

func TestFakeClockTimerStop(t *testing.T) {
	clock := Fake(epoch)
	stopped := clock.NewTimer(time.Minute)
	kept := clock.NewTimer(2 * time.Minute)
	if clock.PendingCount() != 2 {
		t.Fatalf("PendingCount() = %d, want 2", clock.PendingCount())
	}

	if !stopped.Stop() {
		t.Fatal("Stop() on a pending timer = false, want true")
	}
	if stopped.Stop() {
		t.Fatal("second Stop() = true, want false")
	}
	if clock.PendingCount() != 1 {
		t.Fatalf("PendingCount() after Stop = %d, want 1", clock.PendingCount())
	}

	clock.Advance(2 * time.Minute)
	select {
	case <-stopped.C:
		t.Fatal("stopped timer fired")
	default:
	}
	select {
	case <-kept.C:
	default:
		t.Fatal("running timer did not fire")
	}
	if kept.Stop() {
		t.Fatal("Stop() after firing = true, want false")
	}
}

func TestFakeClockWaitForTimers(t *testing.T) {
	clock := Fake(epoch)
	done := make(chan struct{})
	go func() {
		<-clock.After(time.Minute)
		close(done)
	}()

	clock.WaitForTimers(1)
	clock.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(5 * time.Second): //nolint:realclock test hang prevention
		t.Fatal("goroutine did not observe the fired timer")
	}
}
