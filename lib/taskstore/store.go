// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskstore

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bureau-foundation/planner/lib/atomicfile"
	"github.com/bureau-foundation/planner/lib/clock"
	"github.com/bureau-foundation/planner/lib/task"
)

// Options configures a Store.
type Options struct {
	// Directory holds every user's task log. Created on first use.
	Directory string

	// Clock decides which reminders are stale when a user is loaded.
	Clock clock.Clock

	// Logger receives persistence warnings and load diagnostics.
	Logger *slog.Logger
}

// Store is the task list of one active user plus its log file.
type Store struct {
	directory string
	clock     clock.Clock
	logger    *slog.Logger

	mu     sync.Mutex
	user   string
	path   string
	lock   *fileLock
	tasks  []task.Task
	nextID int64

	// damagedTail is set when the last load dropped a truncated
	// record or an append failed part way. The next write must
	// rewrite instead of append.
	damagedTail bool

	// appendLog appends encoded records to the log file.
	appendLog func(path string, data []byte) error
}

// New returns a Store with no active user.
func New(options Options) *Store {
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		directory: options.Directory,
		clock:     clk,
		logger:    logger,
		nextID:    1,
		appendLog: appendFile,
	}
}

// ValidateUsername rejects names that are empty or would escape the
// data directory when used as a file name prefix.
func ValidateUsername(username string) error {
	switch {
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: empty", ErrInvalidUsername)
	case username == "." || username == "..":
		return fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	case strings.ContainsAny(username, "/\\\x00"):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidUsername, username)
	}
	return nil
}

// LogPath returns the task log path for username.
func (s *Store) LogPath(username string) string {
	return filepath.Join(s.directory, username+"_tasks.dat")
}

func (s *Store) lockPath(username string) string {
	return filepath.Join(s.directory, username+"_tasks.lock")
}

// SetActiveUser makes username the active user and loads their log.
//
// In-memory state is replaced and the id counter restarts from one
// past the largest stored id. Reminders that came due while nothing
// was running are marked fired without notification, and the log is
// rewritten only if at least one was corrected, so calling this again
// with nothing stale writes nothing.
//
// If the user's lock is held elsewhere the previous user stays active
// and the error wraps [ErrLocked]. A failed corrective write leaves
// the user active with the corrected list in memory and returns an
// error wrapping [ErrPersist].
func (s *Store) SetActiveUser(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.directory, 0o700); err != nil {
		return fmt.Errorf("creating task directory: %w", err)
	}

	lock := s.lock
	if username != s.user || lock == nil {
		acquired, err := acquireLock(s.lockPath(username))
		if err != nil {
			return err
		}
		if releaseErr := s.lock.release(); releaseErr != nil {
			s.logger.Warn("releasing task log lock failed", "user", s.user, "error", releaseErr)
		}
		lock = acquired
	}

	s.user = username
	s.path = s.LogPath(username)
	s.lock = lock
	s.tasks = nil
	s.nextID = 1
	s.damagedTail = false

	s.loadLocked()

	corrected := s.markStaleLocked(s.clock.Now())
	if corrected == 0 {
		return nil
	}
	s.logger.Info("marked reminders missed while not running",
		"user", username,
		"count", corrected,
	)
	if err := s.rewriteLocked(); err != nil {
		s.logger.Error("persisting stale reminder correction failed",
			"user", username,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// loadLocked reads the active user's log. A missing or unreadable
// file means no tasks.
func (s *Store) loadLocked() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("reading task log failed, starting empty",
				"path", s.path,
				"error", err,
			)
		}
		return
	}

	tasks, consumed := decodeLog(data)
	if consumed < len(data) {
		s.damagedTail = true
		s.logger.Warn("task log ends with an incomplete record",
			"path", s.path,
			"offset", consumed,
			"dropped_bytes", len(data)-consumed,
			"records", len(tasks),
		)
	}

	for _, t := range tasks {
		if t.ID >= s.nextID {
			s.nextID = t.ID + 1
		}
	}
	sortTasks(tasks)
	s.tasks = tasks
}

// markStaleLocked flags every due reminder as fired and returns how
// many it changed.
func (s *Store) markStaleLocked(now time.Time) int {
	count := 0
	for i := range s.tasks {
		if s.tasks[i].ReminderDue(now) {
			s.tasks[i].Reminded = true
			count++
		}
	}
	return count
}

// ActiveUser returns the active username, or "" before SetActiveUser.
func (s *Store) ActiveUser() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Close releases the active user's lock and clears all state.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.lock.release()
	s.lock = nil
	s.user = ""
	s.path = ""
	s.tasks = nil
	s.nextID = 1
	s.damagedTail = false
	return err
}

// Add stores t under a new id and returns the id. The caller's ID
// field is ignored.
func (s *Store) Add(t task.Task) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return task.Unassigned, ErrNoActiveUser
	}
	if s.indexOfKeyLocked(t.Name, t.StartTime, task.Unassigned) >= 0 {
		return task.Unassigned, ErrDuplicate
	}

	t.ID = s.nextID
	if err := s.appendLocked(t); err != nil {
		s.logger.Error("appending task failed",
			"user", s.user,
			"task", t.Name,
			"error", err,
		)
		return task.Unassigned, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.nextID++
	s.tasks = append(s.tasks, t)
	sortTasks(s.tasks)
	return t.ID, nil
}

// Delete removes the task with id and rewrites the log.
func (s *Store) Delete(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return ErrNoActiveUser
	}
	index := s.indexByIDLocked(id)
	if index < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}

	previous := s.tasks
	s.tasks = slices.Delete(slices.Clone(previous), index, index+1)
	if err := s.rewriteLocked(); err != nil {
		s.tasks = previous
		s.logger.Error("rewriting task log after delete failed",
			"user", s.user,
			"id", id,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Update replaces the stored task that has t.ID.
//
// Another task with the same name and start time is rejected with
// [ErrDuplicate]. The fired flag cannot be changed here: a task whose
// reminder has fired stays fired, keeps the instant it fired at, and
// gets its reminder description recomputed against the new start.
// Clearing the reminder entirely is still allowed.
func (s *Store) Update(t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return ErrNoActiveUser
	}
	index := s.indexByIDLocked(t.ID)
	if index < 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, t.ID)
	}
	if s.indexOfKeyLocked(t.Name, t.StartTime, t.ID) >= 0 {
		return ErrDuplicate
	}

	existing := s.tasks[index]
	t.Reminded = existing.Reminded
	if existing.Reminded {
		if t.ReminderTime != 0 {
			t.ReminderTime = existing.ReminderTime
		}
		t.RefreshReminderOption()
	}

	previous := s.tasks
	updated := slices.Clone(previous)
	updated[index] = t
	sortTasks(updated)
	s.tasks = updated

	if err := s.rewriteLocked(); err != nil {
		s.tasks = previous
		s.logger.Error("rewriting task log after update failed",
			"user", s.user,
			"id", t.ID,
			"error", err,
		)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// Get returns a copy of the task with id.
func (s *Store) Get(id int64) (task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.indexByIDLocked(id)
	if index < 0 {
		return task.Task{}, false
	}
	return s.tasks[index], true
}

// List returns a copy of every task, ordered by start time.
func (s *Store) List() []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// ClaimDueReminders marks every reminder due at now as fired, persists
// the change, and returns copies of the claimed tasks. The flags are
// durable before this returns, so a crash after it can never fire the
// same reminder twice. If persisting fails nothing is claimed and the
// next call tries again.
func (s *Store) ClaimDueReminders(now time.Time) ([]task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return nil, nil
	}

	var due []int
	for i := range s.tasks {
		if s.tasks[i].ReminderDue(now) {
			due = append(due, i)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}

	for _, i := range due {
		s.tasks[i].Reminded = true
	}
	if err := s.rewriteLocked(); err != nil {
		for _, i := range due {
			s.tasks[i].Reminded = false
		}
		s.logger.Error("persisting fired reminders failed",
			"user", s.user,
			"count", len(due),
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	claimed := make([]task.Task, 0, len(due))
	for _, i := range due {
		claimed = append(claimed, s.tasks[i])
	}
	return claimed, nil
}

// Import adds many tasks with one rewrite. Tasks that duplicate an
// existing or earlier imported name and start time are skipped. New
// ids are assigned, and reminders already due at import time are
// marked fired the same way a load does. Returns the number added.
func (s *Store) Import(tasks []task.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return 0, ErrNoActiveUser
	}

	previous := s.tasks
	previousNextID := s.nextID
	merged := slices.Clone(previous)
	now := s.clock.Now()
	added := 0

	for _, t := range tasks {
		duplicate := slices.ContainsFunc(merged, func(existing task.Task) bool {
			return existing.Name == t.Name && existing.StartTime == t.StartTime
		})
		if duplicate {
			continue
		}
		t.ID = s.nextID
		s.nextID++
		if t.ReminderDue(now) {
			t.Reminded = true
		}
		merged = append(merged, t)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	sortTasks(merged)
	s.tasks = merged
	if err := s.rewriteLocked(); err != nil {
		s.tasks = previous
		s.nextID = previousNextID
		return 0, fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return added, nil
}

// RemoveUserData deletes the log and lock files of a user who is not
// active in this Store. Missing files are not an error.
func (s *Store) RemoveUserData(username string) error {
	if err := ValidateUsername(username); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if username == s.user {
		return fmt.Errorf("%w: %s", ErrActiveUser, username)
	}

	var errs []error
	for _, path := range []string{s.LogPath(username), s.lockPath(username)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// appendLocked writes one record, or the whole list plus t when the
// file has a damaged tail.
func (s *Store) appendLocked(t task.Task) error {
	if s.damagedTail {
		return s.writeAllLocked(append(slices.Clone(s.tasks), t))
	}
	if err := s.appendLog(s.path, appendRecord(nil, t)); err != nil {
		// Part of the record may have reached the file.
		s.damagedTail = true
		return err
	}
	return nil
}

func (s *Store) rewriteLocked() error {
	return s.writeAllLocked(s.tasks)
}

func (s *Store) writeAllLocked(tasks []task.Task) error {
	if err := atomicfile.Write(s.path, encodeLog(tasks), 0o600); err != nil {
		return err
	}
	s.damagedTail = false
	return nil
}

func (s *Store) indexByIDLocked(id int64) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

// indexOfKeyLocked finds a task with the given name and start time,
// ignoring the task whose id is exclude.
func (s *Store) indexOfKeyLocked(name string, start int64, exclude int64) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool {
		return t.ID != exclude && t.Name == name && t.StartTime == start
	})
}

// sortTasks orders by start time, keeping insertion order for ties.
func sortTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].StartTime < tasks[j].StartTime
	})
}
