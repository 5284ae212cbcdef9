// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the lottery server's YAML configuration.
//
// The file is named by the LOTTERY_CONFIG environment variable ([Load])
// or a --config flag ([LoadFile]). There is no search path. Values in
// the file are merged over [Default], then ${VAR} and ${VAR:-default}
// references in path fields are expanded, using LOTTERY_ROOT and the
// process environment.
//
//	server:
//	  address: ":12345"
//	  listen_backlog: 5
//	  idle_timeout: 1s
//	lottery:
//	  agency_amount: 5
//	  winners_mode: blocking
//	storage:
//	  backend: sqlite
//	  path: ${LOTTERY_ROOT:-/var/lib/lottery}/bets.db
//	status:
//	  socket_path: /run/lottery/status.sock
//	archive:
//	  path: /var/lib/lottery/results.cbor
//	  compression: zstd
//	logging:
//	  level: info
//
// This package depends on no other lottery packages.
package config
