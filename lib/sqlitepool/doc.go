// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens a pool of SQLite connections with the
// pragmas the lottery server relies on.
//
// It wraps zombiezen.com/go/sqlite/sqlitex.Pool. Callers [Pool.Take] a
// connection, run statements with sqlitex.Execute, and [Pool.Put] it
// back. A connection is owned by one goroutine between Take and Put.
//
// Every connection gets:
//
//   - journal_mode=WAL, so the draw can read while a batch is written.
//   - synchronous=FULL by default. Stored bets are the only record of a
//     submission, so a commit must survive power loss. Config.Relaxed
//     selects NORMAL for scratch databases.
//   - busy_timeout=5000 for write contention between connections.
//   - temp_store=MEMORY.
//
// Config.Schema runs on each new connection after the pragmas. It
// must be idempotent (CREATE TABLE IF NOT EXISTS).
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/var/lib/lottery/bets.db",
//	    Schema: schema,
//	    Logger: logger,
//	})
package sqlitepool
