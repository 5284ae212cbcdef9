// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers shared by the lottery
// binaries. Fatal is the one place a binary writes to stderr without
// the structured logger, for errors that happen before the logger
// exists or that end the process.
package process
