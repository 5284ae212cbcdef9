// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements the per-connection protocol state
// machine. A [Router] enforces packet ordering for one connection and
// forwards business packets to a [Handler], normally the process-wide
// lottery coordinator.
//
// A session starts NotStarted. BetStart opens it for one agency; Bet
// and BetFinish are accepted only while it is open and only for that
// agency. A successful BetFinish closes the session again so the
// connection can carry another one. GetWinners is answered in any
// state.
//
// A Router is owned by the goroutine serving its connection and is
// not safe for concurrent use.
package session
