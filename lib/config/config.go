// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the planner's configuration.
//
// Configuration comes from a single YAML file named by the --config
// flag or the PLANNER_CONFIG environment variable. With neither, the
// built-in defaults are used. Values are never taken piecemeal from
// other environment variables; the only expansion is ${VAR} and
// ${VAR:-default} inside path strings.
//
// The file may carry development and production sections whose
// values override the base when the environment matches.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/planner/lib/task"
)

// EnvironmentVariable names the config file when --config is absent.
const EnvironmentVariable = "PLANNER_CONFIG"

// Environment selects an override section.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
)

// Config is the complete planner configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Paths    PathsConfig    `yaml:"paths"`
	Reminder ReminderConfig `yaml:"reminder"`
	Log      LogConfig      `yaml:"log"`
	Archive  ArchiveConfig  `yaml:"archive"`

	Development *ConfigOverrides `yaml:"development,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides holds the fields an environment section may change.
type ConfigOverrides struct {
	Paths    *PathsConfig    `yaml:"paths,omitempty"`
	Reminder *ReminderConfig `yaml:"reminder,omitempty"`
	Log      *LogConfig      `yaml:"log,omitempty"`
	Archive  *ArchiveConfig  `yaml:"archive,omitempty"`
}

// PathsConfig configures where data lives. Tasks, Users and Exports
// may refer to ${PLANNER_DATA}, which expands to Data.
type PathsConfig struct {
	// Data is the root of all planner state.
	Data string `yaml:"data"`

	// Tasks holds one <user>_tasks.dat log per user.
	Tasks string `yaml:"tasks"`

	// Users is the account registry file.
	Users string `yaml:"users"`

	// Exports is the default directory for archives.
	Exports string `yaml:"exports"`
}

// ReminderConfig configures the reminder scheduler.
type ReminderConfig struct {
	// PollInterval is how often due reminders are checked, as a Go
	// duration string. Default: 30s.
	PollInterval string `yaml:"poll_interval"`

	// DefaultLead is the reminder used by "planner add" when --remind
	// is not given, e.g. "15 minutes before" or "none".
	DefaultLead string `yaml:"default_lead"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text, or
	// json.
	Format string `yaml:"format"`
}

// ArchiveConfig configures exports.
type ArchiveConfig struct {
	// Compression is none, lz4, or zstd.
	Compression string `yaml:"compression"`
}

// Default returns the built-in configuration, before expansion.
func Default() *Config {
	homeDirectory, _ := os.UserHomeDir()
	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Data:    filepath.Join(homeDirectory, ".local", "share", "planner"),
			Tasks:   "${PLANNER_DATA}/tasks",
			Users:   "${PLANNER_DATA}/users.cbor",
			Exports: "${PLANNER_DATA}/exports",
		},
		Reminder: ReminderConfig{
			PollInterval: "30s",
			DefaultLead:  "15 minutes before",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Archive: ArchiveConfig{
			Compression: "zstd",
		},
	}
}

// Load reads the file named by PLANNER_CONFIG, or returns the expanded
// defaults when it is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvironmentVariable)
	if path == "" {
		cfg := Default()
		cfg.finish()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads the configuration at path on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.finish()
	return cfg, nil
}

func (c *Config) finish() {
	c.applyEnvironmentOverrides()
	c.expandVariables()
}

func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Production:
		overrides = c.Production
		if overrides == nil {
			overrides = &ConfigOverrides{Log: &LogConfig{Level: "warn"}}
		}
	}
	if overrides == nil {
		return
	}

	if paths := overrides.Paths; paths != nil {
		override(&c.Paths.Data, paths.Data)
		override(&c.Paths.Tasks, paths.Tasks)
		override(&c.Paths.Users, paths.Users)
		override(&c.Paths.Exports, paths.Exports)
	}
	if reminder := overrides.Reminder; reminder != nil {
		override(&c.Reminder.PollInterval, reminder.PollInterval)
		override(&c.Reminder.DefaultLead, reminder.DefaultLead)
	}
	if log := overrides.Log; log != nil {
		override(&c.Log.Level, log.Level)
		override(&c.Log.Format, log.Format)
	}
	if archive := overrides.Archive; archive != nil {
		override(&c.Archive.Compression, archive.Compression)
	}
}

func override(target *string, value string) {
	if value != "" {
		*target = value
	}
}

func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}

	c.Paths.Data = expandVars(c.Paths.Data, vars)
	vars["PLANNER_DATA"] = c.Paths.Data

	c.Paths.Tasks = expandVars(c.Paths.Tasks, vars)
	c.Paths.Users = expandVars(c.Paths.Users, vars)
	c.Paths.Exports = expandVars(c.Paths.Exports, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars replaces ${VAR} and ${VAR:-default}, preferring vars
// over the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		name, defaultValue := parts[1], parts[2]
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

var (
	logLevels    = []string{"debug", "info", "warn", "error"}
	logFormats   = []string{"auto", "text", "json"}
	compressions = []string{"none", "lz4", "zstd"}
)

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %q", c.Environment))
	}
	if c.Paths.Data == "" {
		errs = append(errs, errors.New("paths.data is required"))
	}
	if c.Paths.Tasks == "" {
		errs = append(errs, errors.New("paths.tasks is required"))
	}
	if c.Paths.Users == "" {
		errs = append(errs, errors.New("paths.users is required"))
	}

	if interval, err := time.ParseDuration(c.Reminder.PollInterval); err != nil {
		errs = append(errs, fmt.Errorf("reminder.poll_interval: %w", err))
	} else if interval <= 0 {
		errs = append(errs, fmt.Errorf("reminder.poll_interval must be positive, got %s", interval))
	}
	if _, err := task.ParseReminderOffset(c.Reminder.DefaultLead); err != nil {
		errs = append(errs, fmt.Errorf("reminder.default_lead: %w", err))
	}

	if !slices.Contains(logLevels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of %v", logLevels))
	}
	if !slices.Contains(logFormats, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of %v", logFormats))
	}
	if !slices.Contains(compressions, c.Archive.Compression) {
		errs = append(errs, fmt.Errorf("archive.compression must be one of %v", compressions))
	}

	return errors.Join(errs...)
}

// PollInterval returns the parsed reminder interval. Call Validate
// first; an unparseable value yields zero.
func (c *Config) PollInterval() time.Duration {
	interval, _ := time.ParseDuration(c.Reminder.PollInterval)
	return interval
}

// DefaultLead returns the parsed default reminder offset.
func (c *Config) DefaultLead() time.Duration {
	lead, _ := task.ParseReminderOffset(c.Reminder.DefaultLead)
	return lead
}

// SlogLevel maps Log.Level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// EnsurePaths creates the data, tasks, and exports directories and the
// registry's parent.
func (c *Config) EnsurePaths() error {
	directories := []string{
		c.Paths.Data,
		c.Paths.Tasks,
		c.Paths.Exports,
		filepath.Dir(c.Paths.Users),
	}
	for _, directory := range directories {
		if directory == "" || directory == "." {
			continue
		}
		if err := os.MkdirAll(directory, 0o700); err != nil {
			return fmt.Errorf("creating %s: %w", directory, err)
		}
	}
	return nil
}
