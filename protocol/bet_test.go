// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/bureau-foundation/lottery/lib/bet"
)

func TestProtocolBetDomainConversion(t *testing.T) {
	t.Parallel()
	wire := ProtocolBet{FirstName: "Santiago Lionel", LastName: "Lorca", Document: 30904465, Birthdate: 19990317, Number: 7574}

	domain, err := wire.ToDomain(1)
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	want := bet.Bet{
		Agency:    "1",
		FirstName: "Santiago Lionel",
		LastName:  "Lorca",
		Document:  "30904465",
		Birthdate: "1999-03-17",
		Number:    "7574",
	}
	if domain != want {
		t.Errorf("ToDomain = %+v, want %+v", domain, want)
	}

	back, err := FromDomain(domain)
	if err != nil {
		t.Fatalf("FromDomain: %v", err)
	}
	if back != wire {
		t.Errorf("FromDomain = %+v, want %+v", back, wire)
	}
}

func TestFromDomainValidation(t *testing.T) {
	t.Parallel()
	valid := bet.Bet{Agency: "1", FirstName: "A", LastName: "B", Document: "123", Birthdate: "2000-01-01", Number: "7"}

	tests := []struct {
		name   string
		mutate func(*bet.Bet)
		field  string
	}{
		{name: "non-numeric document", mutate: func(b *bet.Bet) { b.Document = "12A45" }, field: "document"},
		{name: "bad birthdate", mutate: func(b *bet.Bet) { b.Birthdate = "01/01/2000" }, field: "birthdate"},
		{name: "number out of range", mutate: func(b *bet.Bet) { b.Number = "70000" }, field: "number"},
		{name: "long first name", mutate: func(b *bet.Bet) { b.FirstName = strings.Repeat("n", 256) }, field: "first_name"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			candidate := valid
			test.mutate(&candidate)
			_, err := FromDomain(candidate)
			var validation *bet.ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("FromDomain error = %v, want *bet.ValidationError", err)
			}
			if validation.Field != test.field {
				t.Errorf("Field = %q, want %q", validation.Field, test.field)
			}
		})
	}
}

func TestToDomainRejectsImpossibleBirthdate(t *testing.T) {
	t.Parallel()
	_, err := ProtocolBet{Document: 1, Birthdate: 20231345, Number: 1}.ToDomain(1)
	var validation *bet.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("ToDomain error = %v, want *bet.ValidationError", err)
	}
}
