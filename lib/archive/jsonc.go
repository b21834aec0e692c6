// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package archive

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/bureau-foundation/planner/lib/task"
)

// TimeLayout is the start time format of JSONC task lists.
const TimeLayout = "2006-01-02 15:04"

// jsoncDocument is a hand-written task list:
//
//	{
//	  // Comments and trailing commas are allowed.
//	  "tasks": [
//	    {
//	      "name": "Standup",
//	      "start": "2026-03-02 09:00",
//	      "duration": 15,          // minutes
//	      "priority": "high",
//	      "category": "study",
//	      "remind": "10 minutes before",
//	    },
//	  ],
//	}
type jsoncDocument struct {
	Tasks []jsoncTask `json:"tasks"`
}

type jsoncTask struct {
	Name           string `json:"name"`
	Start          string `json:"start"`
	Duration       int    `json:"duration"`
	Priority       string `json:"priority"`
	Category       string `json:"category"`
	CustomCategory string `json:"custom_category,omitempty"`
	Remind         string `json:"remind,omitempty"`
}

// ParseJSONC reads a JSONC task list. Start times are interpreted in
// loc. Every invalid entry is reported.
func ParseJSONC(data []byte, loc *time.Location) ([]task.Task, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.DisallowUnknownFields()

	var document jsoncDocument
	if err := decoder.Decode(&document); err != nil {
		return nil, fmt.Errorf("parsing task list: %w", err)
	}

	tasks := make([]task.Task, 0, len(document.Tasks))
	var problems []error
	for index, entry := range document.Tasks {
		item, err := entry.task(loc)
		if err != nil {
			problems = append(problems, fmt.Errorf("%w: tasks[%d] %q: %w", ErrInvalidTask, index, entry.Name, err))
			continue
		}
		tasks = append(tasks, item)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return tasks, nil
}

func (entry jsoncTask) task(loc *time.Location) (task.Task, error) {
	start, err := time.ParseInLocation(TimeLayout, entry.Start, loc)
	if err != nil {
		return task.Task{}, fmt.Errorf("start: %w", err)
	}
	priority, err := task.ParsePriority(entry.Priority)
	if err != nil {
		return task.Task{}, err
	}
	category, err := task.ParseCategory(entry.Category)
	if err != nil {
		return task.Task{}, err
	}
	offset, err := task.ParseReminderOffset(entry.Remind)
	if err != nil {
		return task.Task{}, err
	}

	item := task.New(entry.Name, start, time.Duration(entry.Duration)*time.Minute, priority, category)
	item.CustomCategory = entry.CustomCategory
	item.ApplyReminderOffset(offset)
	if err := validateImported(item); err != nil {
		return task.Task{}, err
	}
	return item, nil
}
