// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lottery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/bureau-foundation/lottery/lib/bet"
	"github.com/bureau-foundation/lottery/lib/clock"
	"github.com/bureau-foundation/lottery/protocol"
)

// Results describes a completed draw. It is handed to the completion
// hook exactly once per process.
type Results struct {
	AgencyAmount int
	BetCount     int
	CompletedAt  time.Time
	Winners      Winners
}

// Config holds the parameters for a Coordinator.
type Config struct {
	// AgencyAmount is the number of distinct agencies that must
	// finish before the draw runs. Required, between 1 and 255.
	AgencyAmount int

	// Storage persists bets and evaluates winners. Required.
	Storage Storage

	// WinnersMode selects whether GetWinners blocks until the draw
	// (Block, the default) or answers LOTTERY_NOT_DONE (NoWait).
	WinnersMode WaitMode

	// OnComplete, if set, is called once after a successful draw,
	// outside the barrier monitor, by the goroutine that ran it.
	OnComplete func(Results)

	// Clock timestamps the draw. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives operational messages. If nil, a no-op logger
	// is used.
	Logger *slog.Logger
}

// Coordinator is the process-wide bet and lottery state. All methods
// are safe for concurrent use.
type Coordinator struct {
	agencyAmount int
	winnersMode  WaitMode
	onComplete   func(Results)
	clock        clock.Clock
	logger       *slog.Logger
	barrier      *Barrier

	// storageMu serializes StoreBets and LoadBets. It is never held
	// while waiting on the barrier.
	storageMu sync.Mutex
	storage   Storage
}

// NewCoordinator validates cfg and creates a Coordinator.
func NewCoordinator(cfg Config) (*Coordinator, error) {
	if cfg.AgencyAmount < 1 || cfg.AgencyAmount > 255 {
		return nil, fmt.Errorf("lottery: AgencyAmount must be between 1 and 255, got %d", cfg.AgencyAmount)
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("lottery: Storage is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	return &Coordinator{
		agencyAmount: cfg.AgencyAmount,
		winnersMode:  cfg.WinnersMode,
		onComplete:   cfg.OnComplete,
		clock:        clk,
		logger:       logger,
		barrier:      NewBarrier(cfg.AgencyAmount),
		storage:      cfg.Storage,
	}, nil
}

// HandleBets converts a batch of wire bets and stores it. The batch is
// all or nothing: one invalid bet rejects the whole batch before
// anything reaches storage.
func (c *Coordinator) HandleBets(ctx context.Context, agency uint8, wireBets []protocol.ProtocolBet) protocol.Packet {
	bets := make([]bet.Bet, 0, len(wireBets))
	for index, wire := range wireBets {
		domain, err := wire.ToDomain(agency)
		if err != nil {
			c.logger.Error("bet batch rejected",
				"agency", agency,
				"index", index,
				"error", err,
			)
			return protocol.NewError(protocol.CodeInvalidBet, "Invalid Bet batch, could not parse.")
		}
		bets = append(bets, domain)
	}

	if err := c.storeBets(ctx, bets); err != nil {
		c.logger.Error("storing bet batch failed",
			"agency", agency,
			"count", len(bets),
			"error", err,
		)
		return protocol.NewError(protocol.CodeInvalidBet,
			fmt.Sprintf("Internal server error processing batch of %d bets", len(bets)))
	}

	c.logger.Info("bets stored", "agency", agency, "count", len(bets))
	return protocol.NewReply(uint32(len(bets)), "STORED")
}

func (c *Coordinator) storeBets(ctx context.Context, bets []bet.Bet) error {
	c.storageMu.Lock()
	defer c.storageMu.Unlock()
	return c.storage.StoreBets(ctx, bets)
}

// HandleFinish marks agency as ready. The call that completes the
// ready set runs the draw before replying.
func (c *Coordinator) HandleFinish(ctx context.Context, agency uint8) protocol.Packet {
	// The draw must not be abandoned because the triggering
	// connection is going away; it would never be retried.
	drawContext := context.WithoutCancel(ctx)

	var betCount int
	registration, err := c.barrier.RegisterReady(agency, func() (Winners, error) {
		winners, count, err := c.draw(drawContext)
		betCount = count
		return winners, err
	})
	if err != nil {
		c.logger.Error("lottery draw failed",
			"agency", agency,
			"ready", registration.Ready,
			"error", err,
		)
		return protocol.NewError(protocol.CodeInvalidBet, "lottery computation failed")
	}

	c.logger.Info("agency ready",
		"agency", agency,
		"ready", registration.Ready,
		"expected", c.agencyAmount,
	)

	if registration.Triggered {
		c.logger.Info("lottery completed", "bets", betCount, "agencies", c.agencyAmount)
		if c.onComplete != nil {
			c.onComplete(Results{
				AgencyAmount: c.agencyAmount,
				BetCount:     betCount,
				CompletedAt:  c.clock.Now(),
				Winners:      registration.Winners,
			})
		}
	}

	return protocol.NewReply(uint32(registration.Ready), fmt.Sprintf("agency %d registered as ready", agency))
}

// draw evaluates every stored bet. Every agency in 1..AgencyAmount
// gets an entry, possibly empty. Winning documents keep storage order.
func (c *Coordinator) draw(ctx context.Context) (Winners, int, error) {
	winners := make(Winners, c.agencyAmount)
	for agency := 1; agency <= c.agencyAmount; agency++ {
		winners[uint8(agency)] = []string{}
	}

	c.storageMu.Lock()
	defer c.storageMu.Unlock()

	count := 0
	err := c.storage.LoadBets(ctx, func(b bet.Bet) error {
		count++
		if !c.storage.HasWon(b) {
			return nil
		}
		agency, err := strconv.ParseUint(b.Agency, 10, 8)
		if err != nil {
			return fmt.Errorf("stored bet %d has invalid agency %q: %w", count, b.Agency, err)
		}
		winners[uint8(agency)] = append(winners[uint8(agency)], b.Document)
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("loading bets: %w", err)
	}
	return winners, count, nil
}

// HandleWinners answers a winners query for agency, blocking until the
// draw completes unless the coordinator runs in NoWait mode.
func (c *Coordinator) HandleWinners(ctx context.Context, agency uint8) protocol.Packet {
	documents, err := c.barrier.Winners(ctx, agency, c.winnersMode)
	switch {
	case errors.Is(err, ErrShuttingDown):
		return protocol.NewError(protocol.CodeInvalidPacket, "server shutting down")
	case errors.Is(err, ErrNotDone):
		return protocol.NewError(protocol.CodeLotteryNotDone, "lottery not done")
	case err != nil:
		return protocol.NewError(protocol.CodeInvalidPacket, err.Error())
	}

	wire := make([]uint32, 0, len(documents))
	for _, document := range documents {
		value, err := bet.ParseDocument(document)
		if err != nil {
			c.logger.Error("stored winner has invalid document",
				"agency", agency,
				"error", err,
			)
			return protocol.NewError(protocol.CodeInvalidBet, "stored winner document is not numeric")
		}
		wire = append(wire, value)
	}

	c.logger.Info("winners sent", "agency", agency, "count", len(wire))
	return &protocol.ReplyWinnersPacket{AgencyID: agency, Documents: wire}
}

// Status returns a snapshot of agency readiness and draw progress.
func (c *Coordinator) Status() BarrierStatus {
	return c.barrier.Status()
}

// QueryWinners returns the draw result for agency without blocking,
// or ErrNotDone.
func (c *Coordinator) QueryWinners(agency uint8) ([]string, error) {
	return c.barrier.Winners(context.Background(), agency, NoWait)
}

// Close releases every goroutine blocked in HandleWinners with a
// shutdown error. Subsequent HandleWinners calls made before the draw
// completes fail immediately.
func (c *Coordinator) Close() {
	c.barrier.Close()
}
