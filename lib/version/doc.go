// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the planner build.
//
// [GitCommit], [GitDirty], [BuildTime], and [Version] are injected with
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/planner/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/planner
//
// Without injection they read "unknown" and "0.1.0-dev".
package version
