// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"fmt"
	"strings"
)

// Priority orders tasks for display. Lower values are more urgent, so
// sorting ascending puts High first.
type Priority int32

const (
	High Priority = iota
	Medium
	Low
)

var priorityNames = [...]string{High: "high", Medium: "medium", Low: "low"}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool { return p >= High && p <= Low }

func (p Priority) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Priority(%d)", int32(p))
	}
	return priorityNames[p]
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, int32(p))
	}
	return []byte(priorityNames[p]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePriority accepts a priority name in any case, or its first
// letter.
func ParsePriority(s string) (Priority, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for index, name := range priorityNames {
		if normalized == name || (len(normalized) == 1 && normalized[0] == name[0]) {
			return Priority(index), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Category groups tasks. [Other] carries a free-text label in
// Task.CustomCategory.
type Category int32

const (
	Study Category = iota
	Entertainment
	Life
	Other
)

var categoryNames = [...]string{
	Study:         "study",
	Entertainment: "entertainment",
	Life:          "life",
	Other:         "other",
}

// Valid reports whether c is one of the defined categories.
func (c Category) Valid() bool { return c >= Study && c <= Other }

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("Category(%d)", int32(c))
	}
	return categoryNames[c]
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCategory, int32(c))
	}
	return []byte(categoryNames[c]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory accepts a category name in any case.
func ParseCategory(s string) (Category, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	for index, name := range categoryNames {
		if normalized == name {
			return Category(index), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}
