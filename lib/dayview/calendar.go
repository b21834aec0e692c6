// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package dayview

import (
	"time"

	"github.com/bureau-foundation/planner/lib/task"
)

// DaySummary is one calendar cell.
type DaySummary struct {
	Date      time.Time
	Segments  []Segment
	Conflicts int
}

// Summarize returns the conflict-annotated segments of date and how
// many of them overlap another.
func Summarize(date time.Time, tasks []task.Task) DaySummary {
	segments := Day(date, tasks)
	conflicts := 0
	for _, segment := range segments {
		if segment.HasConflict {
			conflicts++
		}
	}
	return DaySummary{Date: date, Segments: segments, Conflicts: conflicts}
}

// WeekStart returns midnight of the Sunday on or before t.
func WeekStart(t time.Time) time.Time {
	start := StartOfDay(t)
	return start.AddDate(0, 0, -int(start.Weekday()))
}

// Week returns the Sunday-first week containing anchor.
func Week(anchor time.Time, tasks []task.Task) [7]DaySummary {
	var week [7]DaySummary
	start := WeekStart(anchor)
	for i := range week {
		week[i] = Summarize(start.AddDate(0, 0, i), tasks)
	}
	return week
}

// MonthGrid returns six Sunday-first weeks starting with the week that
// contains the first of anchor's month. Leading and trailing cells
// belong to the neighbouring months.
func MonthGrid(anchor time.Time) [6][7]time.Time {
	var grid [6][7]time.Time
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	start := WeekStart(first)
	for week := range grid {
		for weekday := range grid[week] {
			grid[week][weekday] = start.AddDate(0, 0, week*7+weekday)
		}
	}
	return grid
}

// Month returns a summary for every cell of MonthGrid(anchor).
func Month(anchor time.Time, tasks []task.Task) [6][7]DaySummary {
	var month [6][7]DaySummary
	grid := MonthGrid(anchor)
	for week := range grid {
		for weekday, date := range grid[week] {
			month[week][weekday] = Summarize(date, tasks)
		}
	}
	return month
}
