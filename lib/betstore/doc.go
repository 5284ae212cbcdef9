// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package betstore persists bets for the lottery coordinator. Two
// backends implement the same [Store] interface:
//
//   - [CSVStore] appends rows to a plain file in the column order
//     agency,first_name,last_name,document,birthdate,number. Each
//     batch is encoded in memory and written with a single write call.
//   - [SQLiteStore] keeps bets in a table managed through
//     lib/sqlitepool. Each batch is one IMMEDIATE transaction and bets
//     load in insertion order.
//
// A bet wins when its number equals the configured winning number.
//
// Neither backend locks against concurrent StoreBets and LoadBets from
// several goroutines; the coordinator serializes them.
package betstore
