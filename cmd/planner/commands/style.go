// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/planner/lib/task"
)

type styles struct {
	header   lipgloss.Style
	dim      lipgloss.Style
	conflict lipgloss.Style
	reminder lipgloss.Style
	priority [3]lipgloss.Style
}

func newStyles(renderer *lipgloss.Renderer) styles {
	return styles{
		header:   renderer.NewStyle().Bold(true),
		dim:      renderer.NewStyle().Faint(true),
		conflict: renderer.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		reminder: renderer.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		priority: [3]lipgloss.Style{
			task.High:   renderer.NewStyle().Foreground(lipgloss.Color("9")),
			task.Medium: renderer.NewStyle().Foreground(lipgloss.Color("11")),
			task.Low:    renderer.NewStyle().Foreground(lipgloss.Color("10")),
		},
	}
}

// priorityTag renders "[high]" and friends padded to a fixed width.
func (s styles) priorityTag(priority task.Priority) string {
	tag := fmt.Sprintf("%-8s", "["+priority.String()+"]")
	if !priority.Valid() {
		return tag
	}
	return s.priority[priority].Render(tag)
}

// cell pads or truncates text to width terminal columns, leaving at
// least one column of separation.
func cell(text string, width int) string {
	if ansi.StringWidth(text) > width-1 {
		text = ansi.Truncate(text, width-1, "…")
	}
	return text + strings.Repeat(" ", width-ansi.StringWidth(text))
}

// formatMinutes renders a duration in minutes as "45m", "2h", or
// "1h30m".
func formatMinutes(minutes int32) string {
	d := time.Duration(minutes) * time.Minute
	hours := int(d / time.Hour)
	rest := int((d % time.Hour) / time.Minute)
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%02dm", hours, rest)
	}
}
