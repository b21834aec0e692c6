// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/task"
	"github.com/bureau-foundation/planner/lib/taskstore"
)

// taskView is the JSON shape of a task in command output.
type taskView struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	Duration       int32     `json:"duration_minutes"`
	Priority       string    `json:"priority"`
	Category       string    `json:"category"`
	Status         string    `json:"status"`
	Reminder       string    `json:"reminder"`
	ReminderAt     time.Time `json:"reminder_at,omitzero"`
	ReminderStatus string    `json:"reminder_status"`
}

func (a *App) view(item task.Task) taskView {
	result := taskView{
		ID:             item.ID,
		Name:           item.Name,
		Start:          item.Start().In(a.location),
		End:            item.End().In(a.location),
		Duration:       item.Duration,
		Priority:       item.Priority.String(),
		Category:       item.CategoryLabel(),
		Status:         item.Status(a.now()).String(),
		Reminder:       item.ReminderOption,
		ReminderStatus: item.ReminderState().String(),
	}
	if item.ReminderTime != 0 {
		result.ReminderAt = time.Unix(item.ReminderTime, 0).In(a.location)
	}
	return result
}

func validationError(err error) error {
	return &cli.CommandError{Category: cli.CategoryValidation, Err: err}
}

type addParams struct {
	connectionParams
	cli.JSONOutput
	Name           string `json:"-" flag:"name,n" desc:"task name (or pass it as the argument)"`
	Start          string `json:"-" flag:"start,s" desc:"start: \"2006-01-02 15:04\", a date (08:00), or a time (today)"`
	Duration       int    `json:"-" flag:"duration,d" default:"60" desc:"length in minutes"`
	Priority       string `json:"-" flag:"priority,p" default:"medium" desc:"high, medium, or low"`
	Category       string `json:"-" flag:"category" default:"study" desc:"study, entertainment, life, or other"`
	CustomCategory string `json:"-" flag:"custom-category" desc:"label for --category other (implies it)"`
	Remind         string `json:"-" flag:"remind,r" desc:"reminder lead such as \"15 minutes before\" or \"none\" (default from configuration)"`
}

func addCommand(app *App) *cli.Command {
	var params addParams
	return &cli.Command{
		Name:    "add",
		Summary: "Add a task",
		Description: "Add a task starting in the future. Names must be unique per start time.\n\n" +
			"Without --remind the configured default lead applies, unless it would already be in the past.",
		Usage: "planner add <name> --start <when> [flags]",
		Examples: []cli.Example{
			{Description: "An hour of study tomorrow at nine", Command: `planner add "Linear algebra" --start "tomorrow 09:00"`},
			{Description: "A short high-priority call with a 10 minute reminder", Command: `planner add Call -s 14:30 -d 15 -p high -r 10m`},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("add", &params)
		},
		Run: func(args []string) error {
			return runAdd(app, &params, args)
		},
	}
}

func runAdd(app *App, params *addParams, args []string) error {
	name := params.Name
	if name == "" {
		name = strings.Join(args, " ")
	} else if len(args) > 0 {
		return cli.Validation("name given both as --name and as an argument")
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}
	now := app.now()

	start, err := parseStart(params.Start, now)
	if err != nil {
		return err
	}
	priority, err := task.ParsePriority(params.Priority)
	if err != nil {
		return validationError(err)
	}
	category, err := task.ParseCategory(params.Category)
	if err != nil {
		return validationError(err)
	}
	if params.CustomCategory != "" {
		category = task.Other
	}

	item := task.New(name, start, time.Duration(params.Duration)*time.Minute, priority, category)
	item.CustomCategory = strings.TrimSpace(params.CustomCategory)

	if params.Remind != "" {
		offset, err := task.ParseReminderOffset(params.Remind)
		if err != nil {
			return validationError(err)
		}
		item.ApplyReminderOffset(offset)
	} else if lead := app.config.DefaultLead(); lead > 0 {
		item.ApplyReminderOffset(lead)
		if item.ReminderTime <= now.Unix() {
			app.logger.Debug("default reminder already past, adding without one", "name", name, "lead", lead)
			item.ApplyReminderOffset(0)
		}
	}

	if err := item.ValidateNew(now); err != nil {
		return validationError(err)
	}
	id, err := app.session.Store().Add(item)
	if err != nil {
		return storeError(err)
	}
	item.ID = id

	if done, err := params.EmitJSON(app.stdout, app.view(item)); done {
		return err
	}
	fmt.Fprintf(app.stdout, "Added task %d: %s at %s (%s)\n",
		id, item.Name, item.Start().In(app.location).Format(dateTimeLayout), formatMinutes(item.Duration))
	if item.ReminderTime != 0 {
		fmt.Fprintf(app.stdout, "Reminder %s.\n", item.ReminderOption)
	}
	return nil
}

type editParams struct {
	connectionParams
	cli.JSONOutput
	Name           string `json:"-" flag:"name,n" desc:"new name"`
	Start          string `json:"-" flag:"start,s" desc:"new start"`
	Duration       string `json:"-" flag:"duration,d" desc:"new length in minutes"`
	Priority       string `json:"-" flag:"priority,p" desc:"new priority"`
	Category       string `json:"-" flag:"category" desc:"new category"`
	CustomCategory string `json:"-" flag:"custom-category" desc:"new label for category other (implies it)"`
	Remind         string `json:"-" flag:"remind,r" desc:"new reminder lead, or \"none\""`
}

func editCommand(app *App) *cli.Command {
	var params editParams
	return &cli.Command{
		Name:    "edit",
		Summary: "Change fields of a task",
		Description: "Change the given fields of a task and keep the rest.\n\n" +
			"Moving a task moves a pending reminder with it, keeping the same lead. " +
			"A reminder that already fired stays fired and cannot be set again; " +
			"--remind none still removes it.",
		Usage: "planner edit <id> [flags]",
		Examples: []cli.Example{
			{Description: "Push task 3 back an hour", Command: `planner edit 3 --start "2026-03-02 10:00"`},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("edit", &params)
		},
		Run: func(args []string) error {
			return runEdit(app, &params, args)
		},
	}
}

func runEdit(app *App, params *editParams, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}
	now := app.now()
	store := app.session.Store()

	item, found := store.Get(id)
	if !found {
		return storeError(fmt.Errorf("%w: id %d", taskstore.ErrNotFound, id))
	}

	if params.Name != "" {
		item.Name = params.Name
	}
	if params.Duration != "" {
		minutes, err := strconv.Atoi(params.Duration)
		if err != nil {
			return cli.Validation("invalid duration %q (want minutes)", params.Duration)
		}
		item.Duration = int32(minutes)
	}
	if params.Priority != "" {
		if item.Priority, err = task.ParsePriority(params.Priority); err != nil {
			return validationError(err)
		}
	}
	if params.Category != "" {
		if item.Category, err = task.ParseCategory(params.Category); err != nil {
			return validationError(err)
		}
	}
	if params.CustomCategory != "" {
		item.Category = task.Other
		item.CustomCategory = strings.TrimSpace(params.CustomCategory)
	}
	if item.Category != task.Other {
		item.CustomCategory = ""
	}

	if params.Start != "" {
		start, err := parseStart(params.Start, now)
		if err != nil {
			return err
		}
		lead := item.ReminderOffset()
		item.StartTime = start.Unix()
		switch item.ReminderState() {
		case task.Pending:
			item.ApplyReminderOffset(lead)
		case task.Reminded:
			item.RefreshReminderOption()
		}
	}
	if params.Remind != "" {
		offset, err := task.ParseReminderOffset(params.Remind)
		if err != nil {
			return validationError(err)
		}
		if item.Reminded && offset > 0 {
			return cli.Validation("task %d: reminder already fired at %s and cannot be set again",
				id, time.Unix(item.ReminderTime, 0).In(app.location).Format(dateTimeLayout))
		}
		item.ApplyReminderOffset(offset)
	}

	if err := item.Validate(now); err != nil {
		return validationError(err)
	}
	if err := store.Update(item); err != nil {
		return storeError(err)
	}
	if item, found = store.Get(id); !found {
		return storeError(fmt.Errorf("%w: id %d", taskstore.ErrNotFound, id))
	}

	if done, err := params.EmitJSON(app.stdout, app.view(item)); done {
		return err
	}
	fmt.Fprintf(app.stdout, "Updated task %d: %s at %s (%s)\n",
		id, item.Name, item.Start().In(app.location).Format(dateTimeLayout), formatMinutes(item.Duration))
	return nil
}

type deleteParams struct {
	connectionParams
}

func deleteCommand(app *App) *cli.Command {
	var params deleteParams
	return &cli.Command{
		Name:    "delete",
		Aliases: []string{"rm"},
		Summary: "Delete a task",
		Usage:   "planner delete <id> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("delete", &params)
		},
		Run: func(args []string) error {
			id, err := parseID(args)
			if err != nil {
				return err
			}
			if err := app.login(params.connectionParams); err != nil {
				return err
			}
			if err := app.session.Store().Delete(id); err != nil {
				return storeError(err)
			}
			fmt.Fprintf(app.stdout, "Deleted task %d.\n", id)
			return nil
		},
	}
}

type listParams struct {
	connectionParams
	cli.JSONOutput
	Upcoming bool `json:"-" flag:"upcoming" desc:"hide finished tasks"`
}

func listCommand(app *App) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls", "agenda"},
		Summary: "List all tasks in start order",
		Description: "List the tasks of the logged-in user ordered by start, then priority, " +
			"with their progress and reminder state.",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("list", &params)
		},
		Run: func(args []string) error {
			return runList(app, &params, args)
		},
	}
}

func runList(app *App, params *listParams, args []string) error {
	if len(args) > 0 {
		return cli.Validation("unexpected argument: %s", args[0])
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}
	now := app.now()

	var tasks []task.Task
	for _, item := range app.session.Store().List() {
		if params.Upcoming && item.Status(now) == task.Finished {
			continue
		}
		tasks = append(tasks, item)
	}

	if params.OutputJSON {
		views := make([]taskView, 0, len(tasks))
		for _, item := range tasks {
			views = append(views, app.view(item))
		}
		return cli.WriteJSON(app.stdout, views)
	}

	if len(tasks) == 0 {
		fmt.Fprintln(app.stdout, "No tasks.")
		return nil
	}

	fmt.Fprintln(app.stdout, app.styles.header.Render(
		cell("ID", 5)+cell("START", 18)+cell("LENGTH", 8)+cell("PRIORITY", 10)+
			cell("NAME", 28)+cell("CATEGORY", 12)+cell("STATUS", 13)+"REMINDER"))
	for _, item := range tasks {
		line := cell(strconv.FormatInt(item.ID, 10), 5) +
			cell(item.Start().In(app.location).Format(dateTimeLayout), 18) +
			cell(formatMinutes(item.Duration), 8) +
			cell(app.styles.priorityTag(item.Priority), 10) +
			cell(item.Name, 28) +
			cell(item.CategoryLabel(), 12) +
			cell(item.Status(now).String(), 13) +
			reminderColumn(item, now)
		if item.Status(now) == task.Finished {
			line = app.styles.dim.Render(line)
		}
		fmt.Fprintln(app.stdout, line)
	}
	return nil
}

func reminderColumn(item task.Task, now time.Time) string {
	switch item.ReminderState() {
	case task.Pending:
		return fmt.Sprintf("%s (%s)", item.ReminderOption,
			humanize.RelTime(time.Unix(item.ReminderTime, 0), now, "ago", "from now"))
	case task.Reminded:
		return "reminded"
	default:
		return "-"
	}
}
