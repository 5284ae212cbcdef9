// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/binary"
	"fmt"
)

// MessageType identifies the packet variant that follows a header.
type MessageType uint8

// Message type constants. These are wire constants: changing them
// breaks compatibility with every deployed agency client.
const (
	// MessageBetStart opens a bet submission session for an agency.
	MessageBetStart MessageType = 0x01

	// MessageBet carries a batch of bets for an agency.
	MessageBet MessageType = 0x02

	// MessageBetFinish marks an agency as done submitting bets and
	// closes its session.
	MessageBetFinish MessageType = 0x03

	// MessageReply acknowledges a request with a counter and message.
	MessageReply MessageType = 0x04

	// MessageError reports a failed request with an error code.
	MessageError MessageType = 0x05

	// MessageGetWinners asks for an agency's winning documents.
	MessageGetWinners MessageType = 0x06

	// MessageReplyWinners returns an agency's winning documents.
	MessageReplyWinners MessageType = 0x07
)

// String returns the packet name for a message type.
func (t MessageType) String() string {
	switch t {
	case MessageBetStart:
		return "bet_start"
	case MessageBet:
		return "bet"
	case MessageBetFinish:
		return "bet_finish"
	case MessageReply:
		return "reply"
	case MessageError:
		return "error"
	case MessageGetWinners:
		return "get_winners"
	case MessageReplyWinners:
		return "reply_winners"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// HeaderSize is the fixed size of a packet header: 1 byte message type
// plus 4 bytes payload length.
const HeaderSize = 5

// MaxPayloadLength bounds the payload a peer may announce. A full
// batch of maximum-size bets is far below this; the limit keeps a
// corrupt or hostile header from forcing a huge allocation.
const MaxPayloadLength = 16 * 1024 * 1024

// Header precedes every packet on the wire.
type Header struct {
	MessageType   MessageType
	PayloadLength uint32
}

// Encode returns the 5-byte wire form of the header.
func (h Header) Encode() [HeaderSize]byte {
	var encoded [HeaderSize]byte
	encoded[0] = byte(h.MessageType)
	binary.BigEndian.PutUint32(encoded[1:5], h.PayloadLength)
	return encoded
}

// DecodeHeader parses a 5-byte header. The message type is not
// validated here so that the caller can still consume the payload of
// an unknown packet before failing; the payload length is checked
// against MaxPayloadLength.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) != HeaderSize {
		return Header{}, &DecodeError{Field: "header", Reason: fmt.Sprintf("got %d bytes, want %d", len(data), HeaderSize)}
	}
	header := Header{
		MessageType:   MessageType(data[0]),
		PayloadLength: binary.BigEndian.Uint32(data[1:5]),
	}
	if header.PayloadLength > MaxPayloadLength {
		return Header{}, &DecodeError{
			MessageType: header.MessageType,
			Field:       "payload_length",
			Reason:      fmt.Sprintf("%d exceeds maximum %d", header.PayloadLength, MaxPayloadLength),
		}
	}
	return header, nil
}
