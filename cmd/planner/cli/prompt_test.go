// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func TestPrompterReadsLines(t *testing.T) {
	var output bytes.Buffer
	prompter := NewPrompter(strings.NewReader("alice\nSecret1\nlast"), &output)

	name, err := prompter.Line("Username: ")
	if err != nil || name != "alice" {
		t.Fatalf("Line() = %q, %v", name, err)
	}
	password, err := prompter.Password("Password: ")
	if err != nil || password != "Secret1" {
		t.Fatalf("Password() = %q, %v", password, err)
	}
	last, err := prompter.Line("> ")
	if err != nil || last != "last" {
		t.Fatalf("Line() without trailing newline = %q, %v", last, err)
	}
	if _, err := prompter.Line("> "); !errors.Is(err, io.EOF) {
		t.Fatalf("Line() at end = %v, want io.EOF", err)
	}
	if got := output.String(); got != "Username: Password: > > " {
		t.Errorf("prompts = %q", got)
	}
}

func TestPrompterNewPassword(t *testing.T) {
	prompter := NewPrompter(strings.NewReader("Secret1\nSecret1\nSecret1\nSecret2\n"), io.Discard)

	password, err := prompter.NewPassword("Password: ")
	if err != nil || password != "Secret1" {
		t.Fatalf("NewPassword() = %q, %v", password, err)
	}
	if _, err := prompter.NewPassword("Password: "); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("NewPassword(mismatch) = %v, want ErrPasswordMismatch", err)
	}
}

func TestNewCommandLogger(t *testing.T) {
	var buffer bytes.Buffer
	NewCommandLogger(&buffer, slog.LevelInfo, "auto").Info("hello", "user", "alice")
	if !strings.HasPrefix(buffer.String(), "{") {
		t.Errorf("auto format on a buffer = %q, want JSON", buffer.String())
	}

	buffer.Reset()
	NewCommandLogger(&buffer, slog.LevelInfo, "text").Info("hello")
	if !strings.Contains(buffer.String(), "msg=hello") {
		t.Errorf("text format = %q", buffer.String())
	}

	buffer.Reset()
	NewCommandLogger(&buffer, slog.LevelWarn, "json").Info("quiet")
	if buffer.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buffer.String())
	}
}
