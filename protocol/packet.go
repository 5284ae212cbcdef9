// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// Packet is one protocol message. The interface is sealed: only the
// seven packet types in this package implement it.
type Packet interface {
	// Type returns the message type written in the packet header.
	Type() MessageType

	// encodePayload appends the payload fields to w.
	encodePayload(w *payloadWriter)
}

// ErrorCode classifies an ErrorPacket.
type ErrorCode uint8

const (
	// CodeInvalidPacket reports a protocol or session violation. The
	// server closes the connection after sending it.
	CodeInvalidPacket ErrorCode = 0x01

	// CodeInvalidBet reports a bet batch that could not be parsed or
	// stored. The connection stays open and the agency may retry.
	CodeInvalidBet ErrorCode = 0x02

	// CodeLotteryNotDone answers GetWinners before the lottery ran,
	// when the server is configured not to block.
	CodeLotteryNotDone ErrorCode = 0x03
)

// String returns the wire-documented name of an error code.
func (c ErrorCode) String() string {
	switch c {
	case CodeInvalidPacket:
		return "BAD_PACKET"
	case CodeInvalidBet:
		return "BAD_BET"
	case CodeLotteryNotDone:
		return "LOTTERY_NOT_DONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(c))
	}
}

// BetStartPacket opens a submission session for AgencyID.
type BetStartPacket struct {
	AgencyID uint8
}

// Type implements Packet.
func (*BetStartPacket) Type() MessageType { return MessageBetStart }

func (p *BetStartPacket) encodePayload(w *payloadWriter) {
	w.uint8(p.AgencyID)
}

// BetPacket carries a batch of bets placed through AgencyID.
type BetPacket struct {
	AgencyID uint8
	Bets     []ProtocolBet
}

// Type implements Packet.
func (*BetPacket) Type() MessageType { return MessageBet }

func (p *BetPacket) encodePayload(w *payloadWriter) {
	w.uint8(p.AgencyID)
	w.count("bet_count", len(p.Bets))
	for index := range p.Bets {
		p.Bets[index].encode(w)
	}
}

// BetFinishPacket reports that AgencyID has sent all of its bets.
type BetFinishPacket struct {
	AgencyID uint8
}

// Type implements Packet.
func (*BetFinishPacket) Type() MessageType { return MessageBetFinish }

func (p *BetFinishPacket) encodePayload(w *payloadWriter) {
	w.uint8(p.AgencyID)
}

// GetWinnersPacket asks for the winning documents of AgencyID.
type GetWinnersPacket struct {
	AgencyID uint8
}

// Type implements Packet.
func (*GetWinnersPacket) Type() MessageType { return MessageGetWinners }

func (p *GetWinnersPacket) encodePayload(w *payloadWriter) {
	w.uint8(p.AgencyID)
}

// ReplyPacket acknowledges a request. DoneCount is request-specific:
// the number of bets stored, or the number of agencies ready.
type ReplyPacket struct {
	DoneCount uint32
	Message   string
}

// Type implements Packet.
func (*ReplyPacket) Type() MessageType { return MessageReply }

func (p *ReplyPacket) encodePayload(w *payloadWriter) {
	w.uint32(p.DoneCount)
	w.string("message", p.Message)
}

// ErrorPacket reports a failed request.
type ErrorPacket struct {
	Code    ErrorCode
	Message string
}

// Type implements Packet.
func (*ErrorPacket) Type() MessageType { return MessageError }

func (p *ErrorPacket) encodePayload(w *payloadWriter) {
	w.uint8(uint8(p.Code))
	w.string("message", p.Message)
}

// ReplyWinnersPacket lists the winning documents for AgencyID, in the
// order the lottery found them.
type ReplyWinnersPacket struct {
	AgencyID  uint8
	Documents []uint32
}

// Type implements Packet.
func (*ReplyWinnersPacket) Type() MessageType { return MessageReplyWinners }

func (p *ReplyWinnersPacket) encodePayload(w *payloadWriter) {
	w.uint8(p.AgencyID)
	w.count("count", len(p.Documents))
	for _, document := range p.Documents {
		w.uint32(document)
	}
}

// NewReply builds a ReplyPacket.
func NewReply(doneCount uint32, message string) *ReplyPacket {
	return &ReplyPacket{DoneCount: doneCount, Message: message}
}

// NewError builds an ErrorPacket.
func NewError(code ErrorCode, message string) *ErrorPacket {
	return &ErrorPacket{Code: code, Message: message}
}

// Marshal serializes a packet with its header. The header's payload
// length is computed from the encoded payload.
func Marshal(packet Packet) ([]byte, error) {
	writer := payloadWriter{
		messageType: packet.Type(),
		buffer:      make([]byte, HeaderSize, HeaderSize+64),
	}
	packet.encodePayload(&writer)
	if writer.err != nil {
		return nil, writer.err
	}

	payloadLength := len(writer.buffer) - HeaderSize
	if payloadLength > MaxPayloadLength {
		return nil, &EncodeError{
			MessageType: packet.Type(),
			Field:       "payload",
			Reason:      fmt.Sprintf("%d bytes exceeds maximum %d", payloadLength, MaxPayloadLength),
		}
	}

	header := Header{MessageType: packet.Type(), PayloadLength: uint32(payloadLength)}.Encode()
	copy(writer.buffer[:HeaderSize], header[:])
	return writer.buffer, nil
}

// Decode parses a payload according to the header's message type. The
// payload must be exactly header.PayloadLength bytes and must be fully
// consumed by the packet's fields.
func Decode(header Header, payload []byte) (Packet, error) {
	if uint32(len(payload)) != header.PayloadLength {
		return nil, &DecodeError{
			MessageType: header.MessageType,
			Field:       "payload",
			Reason:      fmt.Sprintf("got %d bytes, header announced %d", len(payload), header.PayloadLength),
		}
	}

	reader := &payloadReader{messageType: header.MessageType, data: payload}

	var (
		packet Packet
		err    error
	)
	switch header.MessageType {
	case MessageBetStart:
		packet, err = decodeAgencyOnly(reader, func(agency uint8) Packet { return &BetStartPacket{AgencyID: agency} })
	case MessageBet:
		packet, err = decodeBet(reader)
	case MessageBetFinish:
		packet, err = decodeAgencyOnly(reader, func(agency uint8) Packet { return &BetFinishPacket{AgencyID: agency} })
	case MessageReply:
		packet, err = decodeReply(reader)
	case MessageError:
		packet, err = decodeError(reader)
	case MessageGetWinners:
		packet, err = decodeAgencyOnly(reader, func(agency uint8) Packet { return &GetWinnersPacket{AgencyID: agency} })
	case MessageReplyWinners:
		packet, err = decodeReplyWinners(reader)
	default:
		return nil, &DecodeError{MessageType: header.MessageType, Field: "message_type", Reason: "unknown message type"}
	}
	if err != nil {
		return nil, err
	}
	if err := reader.finish(); err != nil {
		return nil, err
	}
	return packet, nil
}

func decodeAgencyOnly(reader *payloadReader, build func(uint8) Packet) (Packet, error) {
	agency, err := reader.uint8("agency_id")
	if err != nil {
		return nil, err
	}
	return build(agency), nil
}

func decodeBet(reader *payloadReader) (Packet, error) {
	agency, err := reader.uint8("agency_id")
	if err != nil {
		return nil, err
	}
	count, err := reader.count("bet_count", minimumProtocolBetSize)
	if err != nil {
		return nil, err
	}
	bets := make([]ProtocolBet, count)
	for index := range bets {
		if err := bets[index].decode(reader); err != nil {
			return nil, err
		}
	}
	return &BetPacket{AgencyID: agency, Bets: bets}, nil
}

func decodeReply(reader *payloadReader) (Packet, error) {
	doneCount, err := reader.uint32("done_count")
	if err != nil {
		return nil, err
	}
	message, err := reader.string("message")
	if err != nil {
		return nil, err
	}
	return &ReplyPacket{DoneCount: doneCount, Message: message}, nil
}

func decodeError(reader *payloadReader) (Packet, error) {
	code, err := reader.uint8("error_code")
	if err != nil {
		return nil, err
	}
	message, err := reader.string("message")
	if err != nil {
		return nil, err
	}
	return &ErrorPacket{Code: ErrorCode(code), Message: message}, nil
}

func decodeReplyWinners(reader *payloadReader) (Packet, error) {
	agency, err := reader.uint8("agency_id")
	if err != nil {
		return nil, err
	}
	count, err := reader.count("count", 4)
	if err != nil {
		return nil, err
	}
	documents := make([]uint32, count)
	for index := range documents {
		if documents[index], err = reader.uint32("document"); err != nil {
			return nil, err
		}
	}
	return &ReplyWinnersPacket{AgencyID: agency, Documents: documents}, nil
}
