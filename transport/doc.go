// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport moves whole lottery protocol packets over a byte
// stream. A [PacketConn] wraps a connection and guarantees that Send
// writes every byte of a packet and Recv returns only complete,
// decoded packets, however the underlying stream fragments them.
//
// Recv distinguishes three outcomes: a packet, io.EOF when the peer
// closed cleanly between packets, and a *[ConnectionError] for every
// other failure (truncated header or payload, undecodable bytes, I/O
// errors). After a ConnectionError the connection must be discarded:
// the stream position is no longer aligned to a packet boundary.
package transport
