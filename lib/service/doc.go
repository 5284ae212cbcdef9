// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package service implements the operator socket: a Unix socket that
// answers one CBOR request per connection. The request is a CBOR map
// with an "action" field plus action-specific fields; the response is
// a [Response] envelope {ok, error, data}.
//
// [SocketServer] dispatches actions registered with Handle. [Client]
// opens a connection per Call, which matches the server's model and
// keeps lottery-ctl stateless.
//
// Access control is the socket file's permissions. The server creates
// the socket with mode 0600.
package service
