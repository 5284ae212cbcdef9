// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/lottery/lib/config"
	"github.com/bureau-foundation/lottery/lib/resultarchive"
	"github.com/bureau-foundation/lottery/lottery"
)

// archiver writes the draw results to disk once the lottery completes.
type archiver struct {
	path        string
	compression resultarchive.Compression
	logger      *slog.Logger
}

func newArchiver(cfg config.ArchiveConfig, logger *slog.Logger) (*archiver, error) {
	compression, err := resultarchive.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	return &archiver{path: cfg.Path, compression: compression, logger: logger}, nil
}

// write is the coordinator's completion hook. A failed archive is
// logged; the draw result stays available to agencies either way.
func (a *archiver) write(results lottery.Results) {
	info, err := resultarchive.Write(a.path, resultarchive.Record{
		AgencyAmount: results.AgencyAmount,
		BetCount:     results.BetCount,
		CompletedAt:  results.CompletedAt,
		Winners:      results.Winners,
	}, a.compression)
	if err != nil {
		a.logger.Error("writing results archive failed", "path", a.path, "error", err)
		return
	}
	a.logger.Info("results archived",
		"path", a.path,
		"compression", info.Compression,
		"size", info.Size,
		"stored_size", info.StoredSize,
		"digest", info.Digest.String(),
	)
}
