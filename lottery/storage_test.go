// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottery

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/lottery/lib/bet"
)

// memoryStorage is an in-memory Storage. A bet wins when its number
// equals winningNumber.
type memoryStorage struct {
	winningNumber string

	mu   sync.Mutex
	bets []bet.Bet

	// storeErr and loadErr, when set, fail the matching call.
	storeErr error
	loadErr  error

	stores atomic.Int32
	loads  atomic.Int32
}

func newMemoryStorage(winningNumber string) *memoryStorage {
	return &memoryStorage{winningNumber: winningNumber}
}

func (s *memoryStorage) StoreBets(_ context.Context, bets []bet.Bet) error {
	s.stores.Add(1)
	if s.storeErr != nil {
		return s.storeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bets = append(s.bets, bets...)
	return nil
}

func (s *memoryStorage) LoadBets(_ context.Context, visit func(bet.Bet) error) error {
	s.loads.Add(1)
	if s.loadErr != nil {
		return s.loadErr
	}
	s.mu.Lock()
	snapshot := append([]bet.Bet(nil), s.bets...)
	s.mu.Unlock()
	for _, stored := range snapshot {
		if err := visit(stored); err != nil {
			return err
		}
	}
	return nil
}

func (s *memoryStorage) HasWon(b bet.Bet) bool {
	return b.Number == s.winningNumber
}

func (s *memoryStorage) stored() []bet.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bet.Bet(nil), s.bets...)
}
