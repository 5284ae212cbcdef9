// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the lottery wire format spoken between
// agency clients and the lottery server.
//
// Every packet is a 5-byte header followed by a payload:
//
//	[1 byte message type] [4 bytes payload length, big-endian uint32] [payload]
//
// The payload length always equals the exact number of payload bytes
// that follow. All integers are unsigned big-endian. Strings are a
// 1-byte length followed by that many UTF-8 bytes, so a string holds at
// most 255 bytes.
//
// Packets form a closed set: [BetStartPacket], [BetPacket],
// [BetFinishPacket] and [GetWinnersPacket] are sent by agencies;
// [ReplyPacket], [ErrorPacket] and [ReplyWinnersPacket] are sent by the
// server. The [Packet] interface is sealed so dispatch sites can switch
// over the concrete types and know the list is complete.
//
// This package performs no I/O. [Marshal] produces the full framed
// bytes for a packet and [Decode] turns a header plus payload back into
// a packet. Framing over a byte stream lives in the transport package.
package protocol
