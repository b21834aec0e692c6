// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/dayview"
)

// segmentView is the JSON shape of one day segment.
type segmentView struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	Priority          string `json:"priority"`
	Category          string `json:"category"`
	Start             string `json:"start"`
	End               string `json:"end"`
	CrossDay          bool   `json:"cross_day"`
	FirstSegment      bool   `json:"first_segment"`
	EndsAtMidnight    bool   `json:"ends_at_midnight"`
	Conflict          bool   `json:"conflict"`
	HighestInConflict bool   `json:"highest_priority_in_conflict"`
}

type dayView struct {
	Date      string        `json:"date"`
	Segments  []segmentView `json:"segments"`
	Conflicts int           `json:"conflicts"`
}

func newDayView(summary dayview.DaySummary) dayView {
	result := dayView{
		Date:      summary.Date.Format(dateLayout),
		Segments:  make([]segmentView, 0, len(summary.Segments)),
		Conflicts: summary.Conflicts,
	}
	for _, segment := range summary.Segments {
		result.Segments = append(result.Segments, segmentView{
			ID:                segment.Task.ID,
			Name:              segment.Task.Name,
			Priority:          segment.Task.Priority.String(),
			Category:          segment.Task.CategoryLabel(),
			Start:             segment.DisplayStart.Format(clockLayout),
			End:               segment.VisibleEnd().Format(clockLayout),
			CrossDay:          segment.IsCrossDay,
			FirstSegment:      segment.IsFirstSegment,
			EndsAtMidnight:    segment.EndsAtMidnight,
			Conflict:          segment.HasConflict,
			HighestInConflict: segment.IsHighestPriorityInConflict,
		})
	}
	return result
}

// segmentLine renders one segment of a day listing.
func (a *App) segmentLine(segment dayview.Segment, nameWidth int) string {
	var line strings.Builder
	fmt.Fprintf(&line, "%s-%s  ",
		segment.DisplayStart.Format(clockLayout), segment.VisibleEnd().Format(clockLayout))
	line.WriteString(cell(a.styles.priorityTag(segment.Task.Priority), 9))
	line.WriteString(cell(segment.Task.Name, nameWidth))

	var notes []string
	if segment.IsCrossDay {
		if !segment.IsFirstSegment {
			notes = append(notes, "continued from "+segment.Task.Start().In(a.location).Format("Mon 15:04"))
		}
		if segment.EndsAtMidnight && segment.Task.End().After(segment.DisplayEnd) {
			notes = append(notes, "continues until "+segment.Task.End().In(a.location).Format("Mon 15:04"))
		}
	}
	if segment.HasConflict {
		marker := "CONFLICT"
		if segment.IsHighestPriorityInConflict {
			marker = "CONFLICT*"
		}
		notes = append(notes, a.styles.conflict.Render(marker))
	}
	if len(notes) > 0 {
		line.WriteString("  " + strings.Join(notes, ", "))
	}
	return strings.TrimRight(line.String(), " ")
}

type dayParams struct {
	connectionParams
	cli.JSONOutput
	FailOnConflict bool `json:"-" flag:"fail-on-conflict" desc:"exit with status 2 when any tasks overlap"`
}

func dayCommand(app *App) *cli.Command {
	var params dayParams
	return &cli.Command{
		Name:    "day",
		Summary: "Show one day with its conflicts",
		Description: "Show the tasks visible on a day, clipped to the day, with overlapping " +
			"tasks marked CONFLICT. CONFLICT* marks the most urgent task of an overlap.\n\n" +
			"The date is today by default; \"tomorrow\", \"yesterday\", \"+N\", \"-N\", " +
			"and 2006-01-02 are accepted.",
		Usage: "planner day [date] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("day", &params)
		},
		Run: func(args []string) error {
			return runDay(app, &params, args)
		},
	}
}

func runDay(app *App, params *dayParams, args []string) error {
	day, err := optionalDay(args, app.now())
	if err != nil {
		return err
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}

	summary := dayview.Summarize(day, app.session.Store().List())
	if done, err := params.EmitJSON(app.stdout, newDayView(summary)); done {
		if err != nil {
			return err
		}
		return conflictExit(params.FailOnConflict, summary.Conflicts)
	}

	fmt.Fprintln(app.stdout, app.styles.header.Render(formatDay(day)))
	if len(summary.Segments) == 0 {
		fmt.Fprintln(app.stdout, app.styles.dim.Render("No tasks."))
		return nil
	}
	for _, segment := range summary.Segments {
		fmt.Fprintln(app.stdout, app.segmentLine(segment, 30))
	}
	if summary.Conflicts > 0 {
		fmt.Fprintf(app.stdout, "\n%s\n", app.styles.conflict.Render(
			fmt.Sprintf("%d of %d tasks overlap.", summary.Conflicts, len(summary.Segments))))
	}
	return conflictExit(params.FailOnConflict, summary.Conflicts)
}

func conflictExit(enabled bool, conflicts int) error {
	if enabled && conflicts > 0 {
		return &cli.ExitError{Code: 2}
	}
	return nil
}

type weekParams struct {
	connectionParams
	cli.JSONOutput
}

func weekCommand(app *App) *cli.Command {
	var params weekParams
	return &cli.Command{
		Name:        "week",
		Summary:     "Show the week containing a date",
		Description: "Show the Sunday-first week containing a date (today by default).",
		Usage:       "planner week [date] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("week", &params)
		},
		Run: func(args []string) error {
			return runWeek(app, &params, args)
		},
	}
}

func runWeek(app *App, params *weekParams, args []string) error {
	anchor, err := optionalDay(args, app.now())
	if err != nil {
		return err
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}

	week := dayview.Week(anchor, app.session.Store().List())
	if params.OutputJSON {
		views := make([]dayView, 0, len(week))
		for _, summary := range week {
			views = append(views, newDayView(summary))
		}
		return cli.WriteJSON(app.stdout, views)
	}

	today := dayview.StartOfDay(app.now())
	for i, summary := range week {
		if i > 0 {
			fmt.Fprintln(app.stdout)
		}
		heading := formatDay(summary.Date)
		if summary.Date.Equal(today) {
			heading += " (today)"
		}
		if summary.Conflicts > 0 {
			heading += "  " + app.styles.conflict.Render(fmt.Sprintf("%d in conflict", summary.Conflicts))
		}
		fmt.Fprintln(app.stdout, app.styles.header.Render(heading))
		if len(summary.Segments) == 0 {
			fmt.Fprintln(app.stdout, app.styles.dim.Render("  -"))
			continue
		}
		for _, segment := range summary.Segments {
			fmt.Fprintln(app.stdout, "  "+app.segmentLine(segment, 24))
		}
	}
	return nil
}

type monthParams struct {
	connectionParams
	cli.JSONOutput
}

func monthCommand(app *App) *cli.Command {
	var params monthParams
	return &cli.Command{
		Name:    "month",
		Summary: "Show a month calendar",
		Description: "Show a Sunday-first month calendar. Days with tasks are marked +, " +
			"days with overlapping tasks !.",
		Usage: "planner month [date] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("month", &params)
		},
		Run: func(args []string) error {
			return runMonth(app, &params, args)
		},
	}
}

func runMonth(app *App, params *monthParams, args []string) error {
	anchor, err := optionalDay(args, app.now())
	if err != nil {
		return err
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}

	month := dayview.Month(anchor, app.session.Store().List())
	if params.OutputJSON {
		var views []dayView
		for _, week := range month {
			for _, summary := range week {
				if summary.Date.Month() == anchor.Month() {
					views = append(views, newDayView(summary))
				}
			}
		}
		return cli.WriteJSON(app.stdout, views)
	}

	const width = 6
	fmt.Fprintln(app.stdout, app.styles.header.Render(anchor.Format("January 2006")))
	var weekdays strings.Builder
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		weekdays.WriteString(cell(weekday.String()[:3], width))
	}
	fmt.Fprintln(app.stdout, strings.TrimRight(weekdays.String(), " "))

	today := dayview.StartOfDay(app.now())
	for _, week := range month {
		var line strings.Builder
		for _, summary := range week {
			label := fmt.Sprintf("%2d", summary.Date.Day())
			switch {
			case summary.Conflicts > 0:
				label += "!"
			case len(summary.Segments) > 0:
				label += "+"
			}
			if summary.Date.Equal(today) {
				label = "[" + label + "]"
			}
			rendered := cell(label, width)
			switch {
			case summary.Date.Month() != anchor.Month():
				rendered = app.styles.dim.Render(rendered)
			case summary.Conflicts > 0:
				rendered = app.styles.conflict.Render(rendered)
			}
			line.WriteString(rendered)
		}
		fmt.Fprintln(app.stdout, strings.TrimRight(line.String(), " "))
	}
	return nil
}
