// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package dayview computes what a calendar shows for a day: which
// tasks are visible, the part of each that falls on the day, and which
// of those parts overlap.
//
// Every function here is pure. Callers pass the day and a task list
// (normally taskstore.Store.List) and render the result; nothing is
// cached between calls.
//
// Days run from local midnight to the next local midnight, so a day
// with a daylight-saving transition is 23 or 25 hours long. Intervals
// are half open. A task ending exactly at midnight therefore appears
// only on the day before that midnight and never produces an empty
// segment on the day after.
package dayview

import (
	"sort"
	"time"

	"github.com/bureau-foundation/planner/lib/task"
)

// Segment is the part of one task that falls on one day.
type Segment struct {
	Task task.Task

	// DisplayStart and DisplayEnd are the task's interval clipped to
	// the day. Conflicts are computed on these. DisplayEnd is exclusive
	// and may be the next midnight; render [Segment.VisibleEnd], whose
	// value is the day's last visible minute, instead of DisplayEnd.
	DisplayStart time.Time
	DisplayEnd   time.Time

	// IsCrossDay is set when the task starts before or ends after
	// this day.
	IsCrossDay bool

	// IsFirstSegment is set on the segment containing the task's
	// true start.
	IsFirstSegment bool

	// EndsAtMidnight is set when DisplayEnd is the end of the day,
	// whether the task stops there or continues.
	EndsAtMidnight bool

	HasConflict                 bool
	IsHighestPriorityInConflict bool
}

// VisibleEnd is the end time to render. A segment running to
// midnight renders as ending at 23:59 so it does not read as wrapping
// to the start of the same day.
func (s Segment) VisibleEnd() time.Time {
	if s.EndsAtMidnight {
		return s.DisplayEnd.Add(-time.Minute)
	}
	return s.DisplayEnd
}

// StartOfDay returns local midnight at the start of t's day, in t's
// location.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// SegmentsForDay returns the segments of tasks visible on day, ordered
// by effective start, then priority (high first), then id.
func SegmentsForDay(day time.Time, tasks []task.Task) []Segment {
	location := day.Location()
	startOfDay := StartOfDay(day)
	endOfDay := startOfDay.AddDate(0, 0, 1)

	var segments []Segment
	for _, t := range tasks {
		start := time.Unix(t.StartTime, 0).In(location)
		end := time.Unix(t.EndUnix(), 0).In(location)

		if !end.After(startOfDay) || !start.Before(endOfDay) {
			continue
		}

		segment := Segment{
			Task:           t,
			DisplayStart:   later(start, startOfDay),
			DisplayEnd:     earlier(end, endOfDay),
			IsCrossDay:     start.Before(startOfDay) || end.After(endOfDay),
			IsFirstSegment: !start.Before(startOfDay),
		}
		segment.EndsAtMidnight = segment.DisplayEnd.Equal(endOfDay)
		segments = append(segments, segment)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		a, b := segments[i], segments[j]
		if !a.DisplayStart.Equal(b.DisplayStart) {
			return a.DisplayStart.Before(b.DisplayStart)
		}
		if a.Task.Priority != b.Task.Priority {
			return a.Task.Priority < b.Task.Priority
		}
		return a.Task.ID < b.Task.ID
	})
	return segments
}

// DetectConflicts returns a copy of segments with the conflict fields
// filled in.
//
// A segment conflicts when its display interval overlaps any other.
// It is the highest priority in its conflict when no segment it
// directly overlaps is more urgent. Overlap is not followed
// transitively: in a chain A-B-C where A and C do not touch, A is
// compared with B only.
func DetectConflicts(segments []Segment) []Segment {
	annotated := make([]Segment, len(segments))
	copy(annotated, segments)

	for i := range annotated {
		current := &annotated[i]
		current.HasConflict = false
		current.IsHighestPriorityInConflict = false

		mostUrgent := current.Task.Priority
		for j := range annotated {
			if i == j || !overlaps(annotated[i], annotated[j]) {
				continue
			}
			current.HasConflict = true
			if annotated[j].Task.Priority < mostUrgent {
				mostUrgent = annotated[j].Task.Priority
			}
		}
		current.IsHighestPriorityInConflict = current.HasConflict && current.Task.Priority <= mostUrgent
	}
	return annotated
}

// Day is SegmentsForDay followed by DetectConflicts.
func Day(day time.Time, tasks []task.Task) []Segment {
	return DetectConflicts(SegmentsForDay(day, tasks))
}

func overlaps(a, b Segment) bool {
	return a.DisplayStart.Before(b.DisplayEnd) && a.DisplayEnd.After(b.DisplayStart)
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
