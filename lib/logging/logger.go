// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process logger for lottery binaries.
package logging

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// New returns a logger writing to stderr at level. When stderr is a
// terminal it uses slog.TextHandler for human-readable output. When
// stderr is piped or redirected (systemd, CI, scripts) it uses
// slog.JSONHandler so log collectors can parse it.
//
// Callers scope the logger with With():
//
//	logger := logging.New(slog.LevelInfo).With("component", "server")
func New(level slog.Level) *slog.Logger {
	return NewWriter(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

// NewWriter is New with an explicit destination and terminal flag.
func NewWriter(w io.Writer, terminal bool, level slog.Level) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if terminal {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}
