// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package server accepts agency connections and runs one worker
// goroutine per connection. Each worker owns a transport.PacketConn and
// a session.Router bound to the shared lottery coordinator, and loops
// receiving a packet, routing it, and sending the reply.
//
// A worker stops when the peer closes the stream, when the connection
// fails, when a packet cannot be decoded, or after it sends a
// BAD_PACKET error. Shutdown (or cancelling the context passed to
// [Server.Serve]) closes the listener, cancels the context every worker
// receives under, and closes the coordinator so workers blocked waiting
// for winners return. Serve returns once every worker has exited.
package server
