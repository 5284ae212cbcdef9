// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package betstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bureau-foundation/lottery/lib/bet"
)

// csvColumns is the number of fields in a stored row.
const csvColumns = 6

// CSVStore keeps bets in an append-only CSV file.
type CSVStore struct {
	winningRule
	path   string
	logger *slog.Logger
}

// OpenCSV returns a store backed by the file at path. The file is
// created on the first StoreBets; a missing file loads as empty.
func OpenCSV(path string, winningNumber uint16, logger *slog.Logger) (*CSVStore, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return nil, fmt.Errorf("betstore: %s is a directory", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("betstore: %w", err)
	}
	logger.Info("csv bet store opened", "path", path, "winning_number", winningNumber)
	return &CSVStore{winningRule: newWinningRule(winningNumber), path: path, logger: logger}, nil
}

// StoreBets appends bets to the file and syncs it. The batch is
// encoded before the file is touched, so an encoding failure writes
// nothing.
func (s *CSVStore) StoreBets(ctx context.Context, bets []bet.Bet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(bets) == 0 {
		return nil
	}

	var buffer bytes.Buffer
	writer := csv.NewWriter(&buffer)
	for _, b := range bets {
		if err := writer.Write(record(b)); err != nil {
			return fmt.Errorf("betstore: encoding bet: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("betstore: encoding batch: %w", err)
	}

	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("betstore: opening %s: %w", s.path, err)
	}
	if _, err := file.Write(buffer.Bytes()); err != nil {
		file.Close()
		return fmt.Errorf("betstore: appending to %s: %w", s.path, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("betstore: syncing %s: %w", s.path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("betstore: closing %s: %w", s.path, err)
	}
	return nil
}

// LoadBets reads the file from the start and calls visit for each row.
func (s *CSVStore) LoadBets(ctx context.Context, visit func(bet.Bet) error) error {
	file, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("betstore: opening %s: %w", s.path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = csvColumns
	reader.ReuseRecord = true
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("betstore: reading %s: %w", s.path, err)
		}
		if err := visit(fromRecord(fields)); err != nil {
			return err
		}
	}
}

// Close is a no-op; the file is only open during a call.
func (s *CSVStore) Close() error { return nil }

func record(b bet.Bet) []string {
	return []string{b.Agency, b.FirstName, b.LastName, b.Document, b.Birthdate, b.Number}
}

func fromRecord(fields []string) bet.Bet {
	return bet.Bet{
		Agency:    fields[0],
		FirstName: fields[1],
		LastName:  fields[2],
		Document:  fields[3],
		Birthdate: fields[4],
		Number:    fields[5],
	}
}
