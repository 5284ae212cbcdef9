// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/lottery/lib/sqlitepool"
)

func pragmaInt(t *testing.T, conn *sqlite.Conn, pragma string) int {
	t.Helper()
	var value int
	err := sqlitex.Execute(conn, "PRAGMA "+pragma, &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			value = stmt.ColumnInt(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("PRAGMA %s: %v", pragma, err)
	}
	return value
}

func TestPragmas(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		relaxed     bool
		synchronous int
	}{
		{"durable", false, 2},
		{"relaxed", true, 1},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			pool := openTestPool(t, sqlitepool.Config{Relaxed: test.relaxed})
			conn, err := pool.Take(context.Background())
			if err != nil {
				t.Fatalf("Take: %v", err)
			}
			defer pool.Put(conn)

			var journalMode string
			err = sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
				ResultFunc: func(stmt *sqlite.Stmt) error {
					journalMode = stmt.ColumnText(0)
					return nil
				},
			})
			if err != nil {
				t.Fatalf("PRAGMA journal_mode: %v", err)
			}
			if journalMode != "wal" {
				t.Errorf("journal_mode = %q, want wal", journalMode)
			}
			if got := pragmaInt(t, conn, "synchronous"); got != test.synchronous {
				t.Errorf("synchronous = %d, want %d", got, test.synchronous)
			}
			if got := pragmaInt(t, conn, "busy_timeout"); got != 5000 {
				t.Errorf("busy_timeout = %d, want 5000", got)
			}
		})
	}
}

func TestSchemaAppliedToEveryConnection(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t, sqlitepool.Config{
		PoolSize: 2,
		Schema:   `CREATE TABLE IF NOT EXISTS numbers (value INTEGER NOT NULL);`,
	})
	ctx := context.Background()

	first, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("Take first: %v", err)
	}
	defer pool.Put(first)
	second, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("Take second: %v", err)
	}
	defer pool.Put(second)

	if err := sqlitex.Execute(first, "INSERT INTO numbers (value) VALUES (?)", &sqlitex.ExecOptions{Args: []any{7574}}); err != nil {
		t.Fatalf("INSERT: %v", err)
	}
	var sum int64
	err = sqlitex.Execute(second, "SELECT value FROM numbers", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			sum += stmt.ColumnInt64(0)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("SELECT: %v", err)
	}
	if sum != 7574 {
		t.Errorf("sum = %d, want 7574", sum)
	}
}

func TestOpenValidation(t *testing.T) {
	t.Parallel()

	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Error("Open with empty Path succeeded")
	}
	if _, err := sqlitepool.Open(sqlitepool.Config{Path: ":memory:", PoolSize: 4}); err == nil {
		t.Error("Open of :memory: with four connections succeeded")
	}
}

func TestTakeHonorsContext(t *testing.T) {
	t.Parallel()

	pool := openTestPool(t, sqlitepool.Config{PoolSize: 1})
	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Fatal("Take on an exhausted pool with a cancelled context succeeded")
	}
}

// openTestPool opens cfg against a temporary file and closes the pool
// when the test ends.
func openTestPool(t *testing.T, cfg sqlitepool.Config) *sqlitepool.Pool {
	t.Helper()
	cfg.Path = filepath.Join(t.TempDir(), "test.db")
	pool, err := sqlitepool.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}
