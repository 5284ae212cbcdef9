// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for lottery packages.
//
// [RequireReceive] and [RequireClosed] wrap the timeout safety valve
// pattern (select with a time.After fallback) so a test that would
// otherwise hang on a broken channel handoff fails with a message
// instead. These are the only helpers that use real wall-clock
// timeouts.
//
// [SocketDir] creates a short temporary directory for Unix domain
// sockets, whose paths are limited to 108 bytes.
//
// All helpers call t.Fatalf on failure.
package testutil
