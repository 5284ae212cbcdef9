// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"strconv"

	"github.com/bureau-foundation/lottery/lib/bet"
)

// ProtocolBet is the wire form of a bet:
//
//	[u8 name_len][name][u8 lastname_len][lastname][u32 document][u32 birthdate YYYYMMDD][u16 number]
type ProtocolBet struct {
	FirstName string
	LastName  string
	Document  uint32
	Birthdate uint32
	Number    uint16
}

// minimumProtocolBetSize is the encoded size of a bet with two empty
// names: two length bytes, document, birthdate and number.
const minimumProtocolBetSize = 1 + 1 + 4 + 4 + 2

func (b *ProtocolBet) encode(w *payloadWriter) {
	w.string("first_name", b.FirstName)
	w.string("last_name", b.LastName)
	w.uint32(b.Document)
	w.uint32(b.Birthdate)
	w.uint16(b.Number)
}

func (b *ProtocolBet) decode(r *payloadReader) error {
	var err error
	if b.FirstName, err = r.string("first_name"); err != nil {
		return err
	}
	if b.LastName, err = r.string("last_name"); err != nil {
		return err
	}
	if b.Document, err = r.uint32("document"); err != nil {
		return err
	}
	if b.Birthdate, err = r.uint32("birthdate"); err != nil {
		return err
	}
	b.Number, err = r.uint16("number")
	return err
}

// ToDomain converts the wire bet into a domain bet placed through
// agency. Fails with a *bet.ValidationError when the birthdate is not a
// calendar date.
func (b ProtocolBet) ToDomain(agency uint8) (bet.Bet, error) {
	birthdate, err := bet.UnpackBirthdate(b.Birthdate)
	if err != nil {
		return bet.Bet{}, err
	}
	return bet.Bet{
		Agency:    strconv.Itoa(int(agency)),
		FirstName: b.FirstName,
		LastName:  b.LastName,
		Document:  bet.FormatDocument(b.Document),
		Birthdate: birthdate,
		Number:    bet.FormatNumber(b.Number),
	}, nil
}

// FromDomain converts a domain bet to its wire form. Fails with a
// *bet.ValidationError for a non-numeric document, a malformed
// birthdate, an out-of-range number, or a name longer than 255 bytes.
func FromDomain(domain bet.Bet) (ProtocolBet, error) {
	if len(domain.FirstName) > maxStringLength {
		return ProtocolBet{}, &bet.ValidationError{Field: "first_name", Value: domain.FirstName, Reason: "longer than 255 bytes"}
	}
	if len(domain.LastName) > maxStringLength {
		return ProtocolBet{}, &bet.ValidationError{Field: "last_name", Value: domain.LastName, Reason: "longer than 255 bytes"}
	}
	document, err := bet.ParseDocument(domain.Document)
	if err != nil {
		return ProtocolBet{}, err
	}
	birthdate, err := bet.PackBirthdate(domain.Birthdate)
	if err != nil {
		return ProtocolBet{}, err
	}
	number, err := bet.ParseNumber(domain.Number)
	if err != nil {
		return ProtocolBet{}, err
	}
	return ProtocolBet{
		FirstName: domain.FirstName,
		LastName:  domain.LastName,
		Document:  document,
		Birthdate: birthdate,
		Number:    number,
	}, nil
}
