// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/lottery/lib/bet"
	"github.com/bureau-foundation/lottery/lib/sqlitepool"
)

const schema = `
CREATE TABLE IF NOT EXISTS bets (
	agency     TEXT NOT NULL,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	document   TEXT NOT NULL,
	birthdate  TEXT NOT NULL,
	number     TEXT NOT NULL
);
`

const insertBet = `INSERT INTO bets (agency, first_name, last_name, document, birthdate, number) VALUES (?, ?, ?, ?, ?, ?)`

const selectBets = `SELECT agency, first_name, last_name, document, birthdate, number FROM bets ORDER BY rowid`

// SQLiteStore keeps bets in a SQLite database.
type SQLiteStore struct {
	winningRule
	pool *sqlitepool.Pool
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, winningNumber uint16, logger *slog.Logger) (*SQLiteStore, error) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:   path,
		Schema: schema,
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("betstore: %w", err)
	}
	return &SQLiteStore{winningRule: newWinningRule(winningNumber), pool: pool}, nil
}

// StoreBets inserts the batch in one transaction. A failure leaves no
// bet of the batch behind.
func (s *SQLiteStore) StoreBets(ctx context.Context, bets []bet.Bet) (err error) {
	if len(bets) == 0 {
		return nil
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("betstore: store bets: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("betstore: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	for index, b := range bets {
		err = sqlitex.Execute(conn, insertBet, &sqlitex.ExecOptions{
			Args: []any{b.Agency, b.FirstName, b.LastName, b.Document, b.Birthdate, b.Number},
		})
		if err != nil {
			return fmt.Errorf("betstore: inserting bet %d of %d: %w", index+1, len(bets), err)
		}
	}
	return nil
}

// LoadBets visits every stored bet in insertion order.
func (s *SQLiteStore) LoadBets(ctx context.Context, visit func(bet.Bet) error) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("betstore: load bets: %w", err)
	}
	defer s.pool.Put(conn)

	return sqlitex.Execute(conn, selectBets, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			return visit(bet.Bet{
				Agency:    stmt.ColumnText(0),
				FirstName: stmt.ColumnText(1),
				LastName:  stmt.ColumnText(2),
				Document:  stmt.ColumnText(3),
				Birthdate: stmt.ColumnText(4),
				Number:    stmt.ColumnText(5),
			})
		},
	})
}

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.pool.Close()
}
