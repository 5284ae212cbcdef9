// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the lottery binaries.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected with
// -ldflags -X, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/lottery/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/lottery-server
//
// Development builds report "0.1.0-dev (unknown, unknown)".
package version
