// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/bureau-foundation/lottery/lib/bet"
)

// DefaultWinningNumber is the number that wins unless configured
// otherwise.
const DefaultWinningNumber = 7574

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Store is a bet storage backend.
type Store interface {
	StoreBets(ctx context.Context, bets []bet.Bet) error
	LoadBets(ctx context.Context, visit func(bet.Bet) error) error
	HasWon(b bet.Bet) bool
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Backend is BackendCSV or BackendSQLite.
	Backend string

	// Path is the CSV file or SQLite database. Its directory must
	// exist.
	Path string

	// WinningNumber decides HasWon.
	WinningNumber uint16

	Logger *slog.Logger
}

// Open creates the backend named by cfg.Backend.
func Open(cfg Config) (Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("betstore: Path is required")
	}
	switch cfg.Backend {
	case BackendCSV:
		return OpenCSV(cfg.Path, cfg.WinningNumber, cfg.Logger)
	case BackendSQLite:
		return OpenSQLite(cfg.Path, cfg.WinningNumber, cfg.Logger)
	default:
		return nil, fmt.Errorf("betstore: unknown backend %q", cfg.Backend)
	}
}

// winningRule reports whether a bet's number equals the winning
// number. A stored number is compared as text, so "07574" does not
// win against 7574; bets converted from the wire never carry leading
// zeros.
type winningRule struct {
	number string
}

func newWinningRule(number uint16) winningRule {
	return winningRule{number: strconv.FormatUint(uint64(number), 10)}
}

func (w winningRule) HasWon(b bet.Bet) bool {
	return b.Number == w.number
}
