// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package archive exports and imports a user's tasks.
//
// An archive is a fixed header followed by a CBOR snapshot,
// optionally compressed:
//
//	magic       8 bytes  "PLNARCH1"
//	compression 1 byte   CompressionTag
//	size        4 bytes  big-endian length of the uncompressed payload
//	checksum    32 bytes BLAKE3-256 of the uncompressed payload
//	payload     the rest
//
// The checksum is verified before the payload is decoded, so a
// damaged archive is rejected as a whole rather than imported in
// part. Hand-written task lists in JSONC are accepted by ReadFile as
// well; see ParseJSONC.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/planner/lib/atomicfile"
	"github.com/bureau-foundation/planner/lib/codec"
	"github.com/bureau-foundation/planner/lib/task"
)

var (
	// ErrNotArchive means the data does not start with the archive
	// magic.
	ErrNotArchive = errors.New("archive: not a planner archive")

	// ErrCorrupt covers a short header, a checksum mismatch, and a
	// payload that does not decompress or decode.
	ErrCorrupt = errors.New("archive: archive is corrupt")

	// ErrUnsupportedVersion is returned for snapshots written by a
	// newer format.
	ErrUnsupportedVersion = errors.New("archive: unsupported snapshot version")

	// ErrInvalidTask wraps validation failures of imported tasks.
	ErrInvalidTask = errors.New("archive: invalid task")
)

var magic = [8]byte{'P', 'L', 'N', 'A', 'R', 'C', 'H', '1'}

const (
	headerSize = len(magic) + 1 + 4 + 32

	// SnapshotVersion is the snapshot layout written by Encode.
	SnapshotVersion = 1

	// maxPayloadSize bounds the allocation made for a header's
	// declared size.
	maxPayloadSize = 64 << 20
)

// Snapshot is one user's task list at a point in time.
type Snapshot struct {
	Version    int         `cbor:"version"`
	User       string      `cbor:"user"`
	ExportedAt int64       `cbor:"exported_at"`
	Tasks      []task.Task `cbor:"tasks"`
}

// NewSnapshot captures tasks for user at now.
func NewSnapshot(user string, now time.Time, tasks []task.Task) Snapshot {
	return Snapshot{
		Version:    SnapshotVersion,
		User:       user,
		ExportedAt: now.Unix(),
		Tasks:      tasks,
	}
}

// Exported returns the export instant in local time.
func (s Snapshot) Exported() time.Time { return time.Unix(s.ExportedAt, 0) }

// Encode serializes snapshot. Compression falls back to none when it
// would not shrink the payload.
func Encode(snapshot Snapshot, compression CompressionTag) ([]byte, error) {
	payload, err := codec.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	if len(payload) > maxPayloadSize {
		return nil, fmt.Errorf("snapshot of %d bytes exceeds the %d byte limit", len(payload), maxPayloadSize)
	}
	compressed, tag, err := compress(payload, compression)
	if err != nil {
		return nil, err
	}

	checksum := blake3.Sum256(payload)
	output := make([]byte, 0, headerSize+len(compressed))
	output = append(output, magic[:]...)
	output = append(output, byte(tag))
	output = binary.BigEndian.AppendUint32(output, uint32(len(payload)))
	output = append(output, checksum[:]...)
	output = append(output, compressed...)
	return output, nil
}

// IsArchive reports whether data starts with the archive magic.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, magic[:])
}

// Decode verifies and parses an archive.
func Decode(data []byte) (Snapshot, error) {
	if !IsArchive(data) {
		return Snapshot{}, ErrNotArchive
	}
	if len(data) < headerSize {
		return Snapshot{}, fmt.Errorf("%w: header truncated at %d bytes", ErrCorrupt, len(data))
	}

	offset := len(magic)
	tag := CompressionTag(data[offset])
	offset++
	size := int(binary.BigEndian.Uint32(data[offset:]))
	offset += 4
	var want [32]byte
	copy(want[:], data[offset:offset+32])
	offset += 32

	if size > maxPayloadSize {
		return Snapshot{}, fmt.Errorf("%w: declared size %d exceeds limit", ErrCorrupt, size)
	}
	payload, err := decompress(data[offset:], tag, size)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if blake3.Sum256(payload) != want {
		return Snapshot{}, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	var snapshot Snapshot
	if err := codec.Unmarshal(payload, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if snapshot.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snapshot.Version)
	}

	var problems []error
	for index, item := range snapshot.Tasks {
		if err := validateImported(item); err != nil {
			problems = append(problems, fmt.Errorf("%w: tasks[%d] %q: %w", ErrInvalidTask, index, item.Name, err))
		}
	}
	if len(problems) > 0 {
		return Snapshot{}, errors.Join(problems...)
	}
	return snapshot, nil
}

// validateImported checks a task's fields. Imports may carry tasks in
// the past with reminders that have already passed; the store marks
// those fired, so the reminder-in-past rule is not applied here.
func validateImported(item task.Task) error {
	return item.Validate(time.Time{})
}

// WriteFile encodes snapshot and atomically replaces path with it.
func WriteFile(path string, snapshot Snapshot, compression CompressionTag) (int, error) {
	data, err := Encode(snapshot, compression)
	if err != nil {
		return 0, err
	}
	if err := atomicfile.Write(path, data, 0o600); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadFile loads tasks from path, which may be an archive or a JSONC
// task list. JSONC times are read in loc.
func ReadFile(path string, loc *time.Location) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("reading %s: %w", path, err)
	}
	if IsArchive(data) {
		return Decode(data)
	}
	tasks, err := ParseJSONC(data, loc)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%s: %w", path, err)
	}
	return Snapshot{Version: SnapshotVersion, Tasks: tasks}, nil
}
