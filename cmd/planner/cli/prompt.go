// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// ErrPasswordMismatch is returned by NewPassword when the two entries
// differ.
var ErrPasswordMismatch = errors.New("passwords do not match")

// Prompter reads answers from the user. On a terminal passwords are
// read without echo; otherwise every answer is one line of input, which
// lets scripts and tests pipe answers in.
type Prompter struct {
	input    io.Reader
	reader   *bufio.Reader
	output   io.Writer
	terminal bool
}

// NewPrompter reads from input and writes prompts to output.
func NewPrompter(input io.Reader, output io.Writer) *Prompter {
	return &Prompter{
		input:    input,
		reader:   bufio.NewReader(input),
		output:   output,
		terminal: IsTerminal(input),
	}
}

// Line prints prompt and returns the next line without its newline.
// At end of input it returns io.EOF.
func (p *Prompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.output, prompt)
	line, err := p.reader.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Password prints prompt and reads a password.
func (p *Prompter) Password(prompt string) (string, error) {
	if !p.terminal {
		return p.Line(prompt)
	}
	fmt.Fprint(p.output, prompt)
	secret, err := term.ReadPassword(int(p.input.(*os.File).Fd()))
	fmt.Fprintln(p.output)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(secret), nil
}

// NewPassword asks for a password twice and requires both to match.
func (p *Prompter) NewPassword(prompt string) (string, error) {
	first, err := p.Password(prompt)
	if err != nil {
		return "", err
	}
	second, err := p.Password("Repeat password: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", ErrPasswordMismatch
	}
	return first, nil
}
