// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottery

import (
	"context"

	"github.com/bureau-foundation/lottery/lib/bet"
)

// Storage persists bets and decides which bets win. The Coordinator
// serializes every StoreBets and LoadBets call, so implementations do
// not need their own locking for those two methods.
type Storage interface {
	// StoreBets appends a batch of bets. Whether a failed call left
	// part of the batch behind is up to the implementation; the
	// Coordinator reports the failure and does not retry.
	StoreBets(ctx context.Context, bets []bet.Bet) error

	// LoadBets calls visit for every stored bet in storage order.
	// Iteration stops at the first error from visit, which LoadBets
	// returns. LoadBets may be called any number of times.
	LoadBets(ctx context.Context, visit func(bet.Bet) error) error

	// HasWon reports whether a bet is a winner.
	HasWon(b bet.Bet) bool
}
