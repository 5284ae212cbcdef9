// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottery

import (
	"context"
	"errors"
	"slices"
	"sync"
)

var (
	// ErrShuttingDown is returned by a winners query that was
	// released by shutdown before the draw completed.
	ErrShuttingDown = errors.New("lottery: server shutting down")

	// ErrNotDone is returned by a non-blocking winners query made
	// before the draw completed.
	ErrNotDone = errors.New("lottery: lottery not done")
)

// Winners maps an agency to the documents of its winning bets, in
// storage order.
type Winners map[uint8][]string

// clone returns a deep copy so callers never share the frozen map.
func (w Winners) clone() Winners {
	copied := make(Winners, len(w))
	for agency, documents := range w {
		copied[agency] = slices.Clone(documents)
	}
	return copied
}

// WaitMode selects how a winners query behaves before the draw.
type WaitMode int

const (
	// Block waits for the draw to complete or for shutdown.
	Block WaitMode = iota

	// NoWait fails immediately with ErrNotDone.
	NoWait
)

// Registration is the outcome of RegisterReady.
type Registration struct {
	// Ready is the number of distinct agencies marked ready.
	Ready int

	// Triggered is true only for the call that ran the draw
	// successfully.
	Triggered bool

	// Winners is a copy of the draw result when Triggered is true.
	Winners Winners
}

// Barrier holds the agency ready set and the draw result behind one
// monitor. RegisterReady and Winners are the only operations that
// touch the draw result; Status exposes counts but never winner
// documents before the draw completes.
type Barrier struct {
	mu       sync.Mutex
	changed  *sync.Cond
	expected int
	ready    map[uint8]struct{}
	winners  Winners
	done     bool
	closed   bool
}

// NewBarrier creates a barrier that opens once expected distinct
// agencies are ready.
func NewBarrier(expected int) *Barrier {
	barrier := &Barrier{
		expected: expected,
		ready:    make(map[uint8]struct{}, expected),
	}
	barrier.changed = sync.NewCond(&barrier.mu)
	return barrier
}

// RegisterReady marks agency as ready. When this call adds the last
// missing agency, draw runs while the monitor is held, so no other
// RegisterReady can race the trigger and every Winners call that
// acquires the monitor afterwards observes the result. Re-registering
// an agency is a no-op for the set.
//
// If draw fails the winners stay empty and the barrier stays closed.
// The draw is only attempted on the transition to a complete set, so
// once every agency is ready a failed draw is never retried.
func (b *Barrier) RegisterReady(agency uint8, draw func() (Winners, error)) (Registration, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	before := len(b.ready)
	b.ready[agency] = struct{}{}
	registration := Registration{Ready: len(b.ready)}

	completedNow := len(b.ready) != before && len(b.ready) == b.expected
	if !completedNow || b.done {
		return registration, nil
	}

	winners, err := draw()
	if err != nil {
		b.winners = nil
		return registration, err
	}
	b.winners = winners
	b.done = true
	b.changed.Broadcast()

	registration.Triggered = true
	registration.Winners = winners.clone()
	return registration, nil
}

// Winners returns the winning documents for agency. With Block it
// waits until the draw completes, the barrier is closed, or ctx ends;
// the latter two return ErrShuttingDown. With NoWait it returns
// ErrNotDone if the draw has not completed. An agency without winning
// bets gets an empty, non-nil slice.
func (b *Barrier) Winners(ctx context.Context, agency uint8, mode WaitMode) ([]string, error) {
	// Wake this waiter when ctx ends. The broadcast takes the lock so
	// it cannot slip between the ctx check and Wait below.
	stop := context.AfterFunc(ctx, func() {
		b.mu.Lock()
		b.changed.Broadcast()
		b.mu.Unlock()
	})
	defer stop()

	b.mu.Lock()
	defer b.mu.Unlock()

	for !b.done {
		if mode == NoWait {
			return nil, ErrNotDone
		}
		if b.closed || ctx.Err() != nil {
			return nil, ErrShuttingDown
		}
		b.changed.Wait()
	}

	documents := b.winners[agency]
	if documents == nil {
		return []string{}, nil
	}
	return slices.Clone(documents), nil
}

// Close releases every blocked and future Winners call that has not
// yet observed a completed draw.
func (b *Barrier) Close() {
	b.mu.Lock()
	b.closed = true
	b.changed.Broadcast()
	b.mu.Unlock()
}

// BarrierStatus is a point-in-time view of a Barrier.
type BarrierStatus struct {
	Expected int
	Ready    []uint8
	Done     bool

	// WinnerCounts is the number of winners per agency. Nil until
	// the draw completes.
	WinnerCounts map[uint8]int
}

// Status returns a snapshot of the barrier.
func (b *Barrier) Status() BarrierStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	status := BarrierStatus{
		Expected: b.expected,
		Ready:    make([]uint8, 0, len(b.ready)),
		Done:     b.done,
	}
	for agency := range b.ready {
		status.Ready = append(status.Ready, agency)
	}
	slices.Sort(status.Ready)

	if b.done {
		status.WinnerCounts = make(map[uint8]int, len(b.winners))
		for agency, documents := range b.winners {
			status.WinnerCounts[agency] = len(documents)
		}
	}
	return status
}
