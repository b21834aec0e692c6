// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package account keeps the registry of planner users.
//
// The registry is one CBOR file mapping usernames to argon2id password
// hashes. Every mutation rewrites the file atomically. Usernames follow
// the task store's rules because each account owns a task log named
// after it.
package account

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"unicode"

	"golang.org/x/crypto/argon2"

	"github.com/bureau-foundation/planner/lib/atomicfile"
	"github.com/bureau-foundation/planner/lib/codec"
	"github.com/bureau-foundation/planner/lib/taskstore"
)

var (
	// ErrExists is returned by Register for a taken username.
	ErrExists = errors.New("account: user already exists")

	// ErrUnknownUser means the username is not registered.
	ErrUnknownUser = errors.New("account: user not found")

	// ErrIncorrectPassword means the supplied password does not match.
	ErrIncorrectPassword = errors.New("account: incorrect password")

	// ErrWeakPassword wraps every password policy violation.
	ErrWeakPassword = errors.New("account: password does not meet policy")

	// ErrCorrupt means the registry file could not be decoded.
	ErrCorrupt = errors.New("account: registry file is corrupt")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Result is the outcome of a login attempt.
type Result int

const (
	Success Result = iota
	UserNotFound
	IncorrectPassword
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case UserNotFound:
		return "user not found"
	case IncorrectPassword:
		return "incorrect password"
	}
	return fmt.Sprintf("Result(%d)", int(r))
}

// CheckPassword enforces the password policy: at least
// MinPasswordLength characters with an upper-case letter, a lower-case
// letter, and a digit. All violations are reported together.
func CheckPassword(password string) error {
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	var problems []error
	if len([]rune(password)) < MinPasswordLength {
		problems = append(problems, fmt.Errorf("%w: shorter than %d characters", ErrWeakPassword, MinPasswordLength))
	}
	if !upper {
		problems = append(problems, fmt.Errorf("%w: no upper-case letter", ErrWeakPassword))
	}
	if !lower {
		problems = append(problems, fmt.Errorf("%w: no lower-case letter", ErrWeakPassword))
	}
	if !digit {
		problems = append(problems, fmt.Errorf("%w: no digit", ErrWeakPassword))
	}
	return errors.Join(problems...)
}

// hashParams are the argon2id cost parameters stored with each hash,
// so they can be raised without invalidating existing accounts.
type hashParams struct {
	Time    uint32 `cbor:"time"`
	Memory  uint32 `cbor:"memory"`
	Threads uint8  `cbor:"threads"`
	KeyLen  uint32 `cbor:"key_len"`
}

var defaultParams = hashParams{Time: 1, Memory: 64 * 1024, Threads: 4, KeyLen: 32}

type credential struct {
	Salt   []byte     `cbor:"salt"`
	Hash   []byte     `cbor:"hash"`
	Params hashParams `cbor:"params"`
}

type registryFile struct {
	Version int                   `cbor:"version"`
	Users   map[string]credential `cbor:"users"`
}

const registryVersion = 1

// Registry is the set of registered users. Safe for concurrent use.
type Registry struct {
	path   string
	logger *slog.Logger
	params hashParams

	mu    sync.Mutex
	users map[string]credential
}

// Open loads the registry at path. A missing file is an empty
// registry; it is created on the first Register.
func Open(path string, logger *slog.Logger) (*Registry, error) {
	registry := &Registry{
		path:   path,
		logger: logger,
		params: defaultParams,
		users:  make(map[string]credential),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return registry, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file registryFile
	if err := codec.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorrupt, path, err)
	}
	if file.Version != registryVersion {
		return nil, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, path, file.Version)
	}
	for name, cred := range file.Users {
		registry.users[name] = cred
	}
	logger.Debug("account registry loaded", "path", path, "users", len(registry.users))
	return registry, nil
}

// Register adds a user. The username must be usable as a task log
// name and the password must pass CheckPassword.
func (r *Registry) Register(username, password string) error {
	if err := taskstore.ValidateUsername(username); err != nil {
		return err
	}
	if err := CheckPassword(password); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[username]; exists {
		return fmt.Errorf("%w: %s", ErrExists, username)
	}
	cred, err := r.derive(password)
	if err != nil {
		return err
	}
	r.users[username] = cred
	if err := r.saveLocked(); err != nil {
		delete(r.users, username)
		return err
	}
	r.logger.Info("account registered", "user", username)
	return nil
}

// Login checks a username and password.
func (r *Registry) Login(username, password string) Result {
	r.mu.Lock()
	cred, exists := r.users[username]
	r.mu.Unlock()

	if !exists {
		return UserNotFound
	}
	if !verify(cred, password) {
		r.logger.Warn("login failed", "user", username)
		return IncorrectPassword
	}
	return Success
}

// ChangePassword replaces the password after checking the old one.
func (r *Registry) ChangePassword(username, oldPassword, newPassword string) error {
	switch r.Login(username, oldPassword) {
	case UserNotFound:
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	case IncorrectPassword:
		return ErrIncorrectPassword
	}
	return r.UpdatePassword(username, newPassword)
}

// UpdatePassword replaces the password without checking the old one.
func (r *Registry) UpdatePassword(username, newPassword string) error {
	if err := CheckPassword(newPassword); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.users[username]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	cred, err := r.derive(newPassword)
	if err != nil {
		return err
	}
	r.users[username] = cred
	if err := r.saveLocked(); err != nil {
		r.users[username] = previous
		return err
	}
	r.logger.Info("password changed", "user", username)
	return nil
}

// Delete removes a user from the registry. Task data is the caller's
// concern.
func (r *Registry) Delete(username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	previous, exists := r.users[username]
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownUser, username)
	}
	delete(r.users, username)
	if err := r.saveLocked(); err != nil {
		r.users[username] = previous
		return err
	}
	r.logger.Info("account deleted", "user", username)
	return nil
}

// Exists reports whether username is registered.
func (r *Registry) Exists(username string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.users[username]
	return exists
}

// Users returns the registered usernames in sorted order.
func (r *Registry) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.users))
	for name := range r.users {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (r *Registry) saveLocked() error {
	data, err := codec.Marshal(registryFile{Version: registryVersion, Users: r.users})
	if err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := atomicfile.Write(r.path, data, 0o600); err != nil {
		r.logger.Error("writing account registry failed", "path", r.path, "error", err)
		return err
	}
	return nil
}

func (r *Registry) derive(password string) (credential, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return credential{}, fmt.Errorf("generating salt: %w", err)
	}
	return credential{
		Salt:   salt,
		Hash:   hash(password, salt, r.params),
		Params: r.params,
	}, nil
}

func hash(password string, salt []byte, params hashParams) []byte {
	return argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLen)
}

func verify(cred credential, password string) bool {
	computed := hash(password, cred.Salt, cred.Params)
	return len(computed) == len(cred.Hash) && subtle.ConstantTimeCompare(computed, cred.Hash) == 1
}

