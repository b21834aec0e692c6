// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskstore

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/bureau-foundation/planner/lib/task"
)

// Record layout, native byte order:
//
//	id             int64
//	startTime      int64
//	duration       int32
//	priority       int32
//	category       int32
//	reminderTime   int64
//	reminded       uint8
//	name           uint32 length, bytes
//	customCategory uint32 length, bytes
//	reminderOption uint32 length, bytes
//
// The file is private to one machine and build; it is not a wire
// format.
const fixedRecordSize = 8 + 8 + 4 + 4 + 4 + 8 + 1

// maxStringLength bounds a single string field. A larger length
// prefix can only come from a damaged file.
const maxStringLength = 1 << 20

var byteOrder = binary.NativeEndian

// errTruncated marks a record that ends before all its fields were
// read.
var errTruncated = errors.New("truncated record")

// appendRecord encodes t onto buffer.
func appendRecord(buffer []byte, t task.Task) []byte {
	buffer = byteOrder.AppendUint64(buffer, uint64(t.ID))
	buffer = byteOrder.AppendUint64(buffer, uint64(t.StartTime))
	buffer = byteOrder.AppendUint32(buffer, uint32(t.Duration))
	buffer = byteOrder.AppendUint32(buffer, uint32(t.Priority))
	buffer = byteOrder.AppendUint32(buffer, uint32(t.Category))
	buffer = byteOrder.AppendUint64(buffer, uint64(t.ReminderTime))
	if t.Reminded {
		buffer = append(buffer, 1)
	} else {
		buffer = append(buffer, 0)
	}
	buffer = appendString(buffer, t.Name)
	buffer = appendString(buffer, t.CustomCategory)
	buffer = appendString(buffer, t.ReminderOption)
	return buffer
}

func appendString(buffer []byte, value string) []byte {
	buffer = byteOrder.AppendUint32(buffer, uint32(len(value)))
	return append(buffer, value...)
}

// encodeLog encodes every task in order.
func encodeLog(tasks []task.Task) []byte {
	var buffer []byte
	for _, t := range tasks {
		buffer = appendRecord(buffer, t)
	}
	return buffer
}

// decodeLog decodes records until data is exhausted or a record is
// incomplete. It returns the complete records and the number of bytes
// they occupy; consumed < len(data) means the tail was dropped.
func decodeLog(data []byte) (tasks []task.Task, consumed int) {
	reader := recordReader{data: data}
	for reader.offset < len(data) {
		start := reader.offset
		t, err := reader.record()
		if err != nil {
			return tasks, start
		}
		tasks = append(tasks, t)
	}
	return tasks, reader.offset
}

// recordReader walks a byte slice one field at a time.
type recordReader struct {
	data   []byte
	offset int
}

func (r *recordReader) take(n int) ([]byte, error) {
	if n < 0 || len(r.data)-r.offset < n {
		return nil, errTruncated
	}
	field := r.data[r.offset : r.offset+n]
	r.offset += n
	return field, nil
}

func (r *recordReader) text() (string, error) {
	prefix, err := r.take(4)
	if err != nil {
		return "", err
	}
	length := byteOrder.Uint32(prefix)
	if length > maxStringLength {
		return "", fmt.Errorf("%w: string length %d", errTruncated, length)
	}
	value, err := r.take(int(length))
	if err != nil {
		return "", err
	}
	return string(value), nil
}

func (r *recordReader) record() (task.Task, error) {
	fixed, err := r.take(fixedRecordSize)
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:           int64(byteOrder.Uint64(fixed[0:8])),
		StartTime:    int64(byteOrder.Uint64(fixed[8:16])),
		Duration:     int32(byteOrder.Uint32(fixed[16:20])),
		Priority:     task.Priority(int32(byteOrder.Uint32(fixed[20:24]))),
		Category:     task.Category(int32(byteOrder.Uint32(fixed[24:28]))),
		ReminderTime: int64(byteOrder.Uint64(fixed[28:36])),
		Reminded:     fixed[36] != 0,
	}

	if t.Name, err = r.text(); err != nil {
		return task.Task{}, err
	}
	if t.CustomCategory, err = r.text(); err != nil {
		return task.Task{}, err
	}
	if t.ReminderOption, err = r.text(); err != nil {
		return task.Task{}, err
	}
	return t, nil
}
