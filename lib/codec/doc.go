// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the planner's CBOR encoding configuration.
//
// Two on-disk formats use it: the account registry (users.cbor) and
// task archives produced by lib/archive. The task log itself is a
// fixed binary record format owned by lib/taskstore and does not go
// through this package.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2), so the
// same registry or snapshot always produces identical bytes. Archives
// depend on this: their checksum is computed over the encoded
// snapshot.
//
// Types with a `json` tag serialize identically in CBOR (fxamacker
// falls back to json tags), which lets task.Task be shared between
// `planner list --json` and archives without a second set of tags.
package codec
