// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"reflect"
	"strings"
	"testing"
)

// decodeFramed splits marshaled bytes back into header and payload and
// decodes them.
func decodeFramed(t *testing.T, data []byte) Packet {
	t.Helper()
	header, err := DecodeHeader(data[:HeaderSize])
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	packet, err := Decode(header, data[HeaderSize:])
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return packet
}

func sampleBets() []ProtocolBet {
	return []ProtocolBet{
		{FirstName: "Santiago Lionel", LastName: "Lorca", Document: 30904465, Birthdate: 19990317, Number: 7574},
		{FirstName: "", LastName: "", Document: 0, Birthdate: 20000101, Number: 0},
		{FirstName: "José", LastName: "Muñoz", Document: 4294967295, Birthdate: 19700101, Number: 65535},
	}
}

func TestMarshalDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		packet Packet
	}{
		{name: "bet start", packet: &BetStartPacket{AgencyID: 3}},
		{name: "bet batch", packet: &BetPacket{AgencyID: 1, Bets: sampleBets()}},
		{name: "empty bet batch", packet: &BetPacket{AgencyID: 255, Bets: []ProtocolBet{}}},
		{name: "bet finish", packet: &BetFinishPacket{AgencyID: 5}},
		{name: "get winners", packet: &GetWinnersPacket{AgencyID: 2}},
		{name: "reply", packet: NewReply(42, "STORED")},
		{name: "reply empty message", packet: NewReply(0, "")},
		{name: "error", packet: NewError(CodeInvalidBet, "Invalid Bet batch, could not parse.")},
		{name: "reply winners", packet: &ReplyWinnersPacket{AgencyID: 1, Documents: []uint32{7654321, 30904465}}},
		{name: "reply winners empty", packet: &ReplyWinnersPacket{AgencyID: 4, Documents: []uint32{}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			data, err := Marshal(test.packet)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if data[0] != byte(test.packet.Type()) {
				t.Errorf("type byte = 0x%02x, want 0x%02x", data[0], byte(test.packet.Type()))
			}
			if got := binary.BigEndian.Uint32(data[1:5]); int(got) != len(data)-HeaderSize {
				t.Errorf("payload length = %d, want %d", got, len(data)-HeaderSize)
			}

			got := decodeFramed(t, data)
			if !reflect.DeepEqual(got, test.packet) {
				t.Errorf("round trip mismatch:\n got  %#v\n want %#v", got, test.packet)
			}
		})
	}
}

func TestMarshalWireLayout(t *testing.T) {
	t.Parallel()
	data, err := Marshal(&BetPacket{
		AgencyID: 1,
		Bets:     []ProtocolBet{{FirstName: "Al", LastName: "B", Document: 1, Birthdate: 20000101, Number: 2}},
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := []byte{
		0x02, 0x00, 0x00, 0x00, 0x14, // header: type 2, 20 payload bytes
		0x01,                         // agency
		0x00, 0x00, 0x00, 0x01,       // count
		0x02, 'A', 'l',               // first name
		0x01, 'B',                    // last name
		0x00, 0x00, 0x00, 0x01,       // document
		0x01, 0x31, 0x2d, 0x65,       // birthdate 20000101
		0x00, 0x02,                   // number
	}
	if !bytes.Equal(data, want) {
		t.Errorf("wire bytes:\n got  % x\n want % x", data, want)
	}
}

func TestDecodeRejectsMalformedPayloads(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		messageType MessageType
		payload     []byte
		wantField   string
	}{
		{
			name:        "unknown message type",
			messageType: 0x09,
			payload:     []byte{0x01},
			wantField:   "message_type",
		},
		{
			name:        "empty bet start",
			messageType: MessageBetStart,
			payload:     []byte{},
			wantField:   "agency_id",
		},
		{
			name:        "trailing bytes",
			messageType: MessageBetFinish,
			payload:     []byte{0x01, 0x02},
			wantField:   "payload",
		},
		{
			name:        "string length beyond buffer",
			messageType: MessageBet,
			payload: []byte{
				0x01,
				0x00, 0x00, 0x00, 0x01,
				0xff, 'a', 'b', 'c', // claims 255 bytes
				0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
			},
			wantField: "first_name",
		},
		{
			name:        "bet count larger than buffer",
			messageType: MessageBet,
			payload:     []byte{0x01, 0x7f, 0xff, 0xff, 0xff},
			wantField:   "bet_count",
		},
		{
			name:        "winner count inconsistent",
			messageType: MessageReplyWinners,
			payload:     []byte{0x01, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01},
			wantField:   "count",
		},
		{
			name:        "invalid utf-8",
			messageType: MessageReply,
			payload:     []byte{0x00, 0x00, 0x00, 0x00, 0x02, 0xc3, 0x28},
			wantField:   "message",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			header := Header{MessageType: test.messageType, PayloadLength: uint32(len(test.payload))}
			_, err := Decode(header, test.payload)
			var decodeErr *DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("Decode error = %v, want *DecodeError", err)
			}
			if decodeErr.Field != test.wantField {
				t.Errorf("Field = %q, want %q (error: %v)", decodeErr.Field, test.wantField, err)
			}
		})
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	t.Parallel()
	_, err := Decode(Header{MessageType: MessageBetStart, PayloadLength: 2}, []byte{0x01})
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Decode error = %v, want *DecodeError", err)
	}
}

func TestDecodeHeader(t *testing.T) {
	t.Parallel()
	header, err := DecodeHeader([]byte{0x06, 0x00, 0x00, 0x00, 0x01})
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if header.MessageType != MessageGetWinners || header.PayloadLength != 1 {
		t.Errorf("header = %+v, want get_winners with 1 byte", header)
	}

	if _, err := DecodeHeader([]byte{0x06, 0x00}); err == nil {
		t.Error("DecodeHeader accepted a short header")
	}

	oversized := Header{MessageType: MessageBet, PayloadLength: MaxPayloadLength + 1}.Encode()
	if _, err := DecodeHeader(oversized[:]); err == nil {
		t.Error("DecodeHeader accepted a payload length above the maximum")
	}
}

func TestMarshalRejectsLongStrings(t *testing.T) {
	t.Parallel()
	_, err := Marshal(NewReply(1, strings.Repeat("x", 256)))
	var encodeErr *EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("Marshal error = %v, want *EncodeError", err)
	}

	if _, err := Marshal(NewReply(1, strings.Repeat("x", 255))); err != nil {
		t.Errorf("Marshal of a 255-byte message: %v", err)
	}
}

func TestErrorCodeNames(t *testing.T) {
	t.Parallel()
	names := map[ErrorCode]string{
		CodeInvalidPacket:  "BAD_PACKET",
		CodeInvalidBet:     "BAD_BET",
		CodeLotteryNotDone: "LOTTERY_NOT_DONE",
	}
	for code, want := range names {
		if code.String() != want {
			t.Errorf("ErrorCode(%d).String() = %q, want %q", code, code.String(), want)
		}
	}
}
