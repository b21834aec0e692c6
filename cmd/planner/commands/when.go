// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
)

const (
	dateLayout     = "2006-01-02"
	clockLayout    = "15:04"
	dateTimeLayout = "2006-01-02 15:04"

	// defaultStartHour applies when --start names only a date.
	defaultStartHour = 8
)

// parseStart reads a task start: "2006-01-02 15:04", a date alone
// (08:00 that day), or a time alone (that time today). Relative day
// words are accepted wherever a date is.
func parseStart(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, cli.Validation("--start is required").
			WithHint(`Use "2006-01-02 15:04", a date (08:00), or a time (today).`)
	}
	location := now.Location()

	if start, err := time.ParseInLocation(dateTimeLayout, text, location); err == nil {
		return start, nil
	}
	if clock, err := time.ParseInLocation(clockLayout, text, location); err == nil {
		return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, location), nil
	}
	if dayText, clockText, found := strings.Cut(text, " "); found {
		day, err := parseDay(dayText, now)
		if err == nil {
			if clock, err := time.ParseInLocation(clockLayout, strings.TrimSpace(clockText), location); err == nil {
				return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, location), nil
			}
		}
	}
	day, err := parseDay(text, now)
	if err != nil {
		return time.Time{}, cli.Validation("invalid start %q", text).
			WithHint(`Use "2006-01-02 15:04", a date (08:00), or a time (today).`)
	}
	return day.Add(defaultStartHour * time.Hour), nil
}

// parseDay reads a calendar day: "", "today", "tomorrow",
// "yesterday", "+N"/"-N" days from today, or "2006-01-02". The result
// is local midnight.
func parseDay(text string, now time.Time) (time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	text = strings.ToLower(strings.TrimSpace(text))

	switch text {
	case "", "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	if strings.HasPrefix(text, "+") || strings.HasPrefix(text, "-") {
		offset, err := strconv.Atoi(text)
		if err != nil {
			return time.Time{}, cli.Validation("invalid day offset %q", text)
		}
		return today.AddDate(0, 0, offset), nil
	}
	day, err := time.ParseInLocation(dateLayout, text, now.Location())
	if err != nil {
		return time.Time{}, cli.Validation("invalid date %q (want %s)", text, dateLayout)
	}
	return day, nil
}

// parseID reads a task id argument.
func parseID(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, cli.Validation("expected exactly one task id, got %d arguments", len(args))
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Validation("invalid task id %q", args[0])
	}
	return id, nil
}

// optionalDay reads the single optional day argument of the views.
func optionalDay(args []string, now time.Time) (time.Time, error) {
	switch len(args) {
	case 0:
		return parseDay("", now)
	case 1:
		return parseDay(args[0], now)
	default:
		return time.Time{}, cli.Validation("expected at most one date, got %d arguments", len(args))
	}
}

func formatDay(day time.Time) string {
	return fmt.Sprintf("%s %s", day.Format("Monday"), day.Format(dateLayout))
}
