// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/planner/cmd/planner/cli"
	"github.com/bureau-foundation/planner/lib/archive"
)

// ArchiveExtension names export files.
const ArchiveExtension = ".plnarc"

type exportResult struct {
	Path        string `json:"path"`
	Tasks       int    `json:"tasks"`
	Bytes       int    `json:"bytes"`
	Compression string `json:"compression"`
}

type exportParams struct {
	connectionParams
	cli.JSONOutput
	Compression string `json:"-" flag:"compression" desc:"none, lz4, or zstd (default from configuration)"`
}

func exportCommand(app *App) *cli.Command {
	var params exportParams
	return &cli.Command{
		Name:    "export",
		Summary: "Write all tasks to an archive file",
		Description: "Write the logged-in user's tasks to a checksummed, compressed archive. " +
			"Without a path the archive goes to the configured exports directory.",
		Usage: "planner export [path] [flags]",
		Examples: []cli.Example{
			{Description: "Export to the exports directory", Command: "planner export"},
			{Description: "Export uncompressed to a chosen file", Command: "planner export backup.plnarc --compression none"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("export", &params)
		},
		Run: func(args []string) error {
			return runExport(app, &params, args)
		},
	}
}

func runExport(app *App, params *exportParams, args []string) error {
	if len(args) > 1 {
		return cli.Validation("expected at most one path, got %d arguments", len(args))
	}
	if err := app.login(params.connectionParams); err != nil {
		return err
	}

	compression := params.Compression
	if compression == "" {
		compression = app.config.Archive.Compression
	}
	tag, err := archive.ParseCompressionTag(compression)
	if err != nil {
		return validationError(err)
	}

	now := app.now()
	user := app.session.User()
	path := filepath.Join(app.config.Paths.Exports,
		fmt.Sprintf("%s-%s%s", user, now.Format("20060102-150405"), ArchiveExtension))
	if len(args) == 1 {
		path = args[0]
	}

	snapshot := archive.NewSnapshot(user, now, app.session.Store().List())
	size, err := archive.WriteFile(path, snapshot, tag)
	if err != nil {
		return cli.Internal("exporting to %s: %w", path, err)
	}
	app.logger.Info("tasks exported", "path", path, "tasks", len(snapshot.Tasks), "bytes", size)

	result := exportResult{Path: path, Tasks: len(snapshot.Tasks), Bytes: size, Compression: tag.String()}
	if done, err := params.EmitJSON(app.stdout, result); done {
		return err
	}
	fmt.Fprintf(app.stdout, "Exported %d tasks to %s (%s).\n",
		result.Tasks, path, humanize.Bytes(uint64(size)))
	return nil
}

type importResult struct {
	Path     string `json:"path"`
	Read     int    `json:"read"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

type importParams struct {
	connectionParams
	cli.JSONOutput
}

func importCommand(app *App) *cli.Command {
	var params importParams
	return &cli.Command{
		Name:    "import",
		Summary: "Add tasks from an archive or JSONC file",
		Description: `Add tasks from an archive written by "planner export" or from a JSONC
task list. Tasks whose name and start time match an existing task
are skipped. Imported tasks get new ids, and reminders already due
are marked as fired.

A JSONC task list looks like:

  {
    // comments and trailing commas are allowed
    "tasks": [
      {"name": "Standup", "start": "2026-03-02 09:00", "duration": 15,
       "priority": "high", "category": "life", "remind": "10 minutes before"},
    ],
  }`,
		Usage: "planner import <path> [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("import", &params)
		},
		Run: func(args []string) error {
			return runImport(app, &params, args)
		},
	}
}

func runImport(app *App, params *importParams, args []string) error {
	if len(args) != 1 {
		return cli.Validation("expected exactly one path, got %d arguments", len(args))
	}
	path := args[0]
	if err := app.login(params.connectionParams); err != nil {
		return err
	}

	snapshot, err := archive.ReadFile(path, app.location)
	if err != nil {
		return importError(err)
	}
	if snapshot.User != "" && snapshot.User != app.session.User() {
		app.logger.Info("importing another user's export", "from", snapshot.User, "exported", snapshot.Exported())
	}

	imported, err := app.session.Store().Import(snapshot.Tasks)
	if err != nil {
		return storeError(err)
	}

	result := importResult{
		Path:     path,
		Read:     len(snapshot.Tasks),
		Imported: imported,
		Skipped:  len(snapshot.Tasks) - imported,
	}
	if done, err := params.EmitJSON(app.stdout, result); done {
		return err
	}
	fmt.Fprintf(app.stdout, "Imported %d of %d tasks from %s", result.Imported, result.Read, path)
	if result.Skipped > 0 {
		fmt.Fprintf(app.stdout, " (%d already present)", result.Skipped)
	}
	fmt.Fprintln(app.stdout, ".")
	return nil
}

// importError categorizes a failure to read an import file. Anything
// that is not a file system error is a problem with the file's
// contents.
func importError(err error) error {
	var pathError *fs.PathError
	switch {
	case errors.Is(err, os.ErrNotExist):
		return &cli.CommandError{Category: cli.CategoryNotFound, Err: err}
	case errors.As(err, &pathError):
		return &cli.CommandError{Category: cli.CategoryInternal, Err: err}
	default:
		return &cli.CommandError{Category: cli.CategoryValidation, Err: err}
	}
}
