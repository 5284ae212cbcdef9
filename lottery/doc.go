// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package lottery coordinates bet intake and the one-time lottery draw
// across every agency connection served by the process.
//
// The [Coordinator] is shared by all connection workers. It converts
// wire bets into domain bets and appends them to [Storage], tracks
// which agencies have finished submitting, and answers winner queries.
//
// Agency readiness and the draw result live in a [Barrier]: a single
// mutex and condition variable guarding the ready set, the winners map
// and the completion flag. The draw runs exactly once, inside the
// barrier, on the call that brings the ready set to the expected
// agency count. Winner queries made earlier block on the barrier until
// the draw completes or the barrier is closed for shutdown. Once the
// draw completes the winners map is never written again.
//
// Storage access is serialized by a second lock, separate from the
// barrier, so that a batch store never waits behind goroutines blocked
// on winners.
package lottery
