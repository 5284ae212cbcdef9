// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bet defines the domain representation of a lottery bet and
// the exact conversions between its textual fields and the numeric
// forms carried on the wire.
//
// A domain Bet stores every field as text, matching the storage
// format: the document and number are decimal strings and the
// birthdate is "YYYY-MM-DD". The wire format packs the document and
// birthdate into uint32 values (the birthdate as YYYYMMDD) and the
// number into a uint16. The helpers in this package convert between
// the two and report malformed input as a *ValidationError.
package bet

import (
	"fmt"
	"strconv"
	"time"
)

// Bet is a single lottery bet placed by a person through an agency.
type Bet struct {
	Agency    string
	FirstName string
	LastName  string
	Document  string
	Birthdate string
	Number    string
}

// ValidationError reports a bet field that cannot be represented in
// its canonical form.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// birthdateLayout is the textual birthdate format used by domain bets.
const birthdateLayout = "2006-01-02"

// ParseDocument converts a decimal document string to its wire value.
// Only plain ASCII digits are accepted: signs, spaces, and values that
// overflow uint32 are rejected.
func ParseDocument(document string) (uint32, error) {
	if document == "" {
		return 0, &ValidationError{Field: "document", Value: document, Reason: "must not be empty"}
	}
	for _, character := range document {
		if character < '0' || character > '9' {
			return 0, &ValidationError{Field: "document", Value: document, Reason: "must be numeric"}
		}
	}
	value, err := strconv.ParseUint(document, 10, 32)
	if err != nil {
		return 0, &ValidationError{Field: "document", Value: document, Reason: "out of range"}
	}
	return uint32(value), nil
}

// FormatDocument renders a wire document value as a decimal string.
func FormatDocument(document uint32) string {
	return strconv.FormatUint(uint64(document), 10)
}

// ParseNumber converts a decimal bet number to its wire value.
func ParseNumber(number string) (uint16, error) {
	value, err := strconv.ParseUint(number, 10, 16)
	if err != nil {
		return 0, &ValidationError{Field: "number", Value: number, Reason: "must be a number between 0 and 65535"}
	}
	return uint16(value), nil
}

// FormatNumber renders a wire bet number as a decimal string.
func FormatNumber(number uint16) string {
	return strconv.FormatUint(uint64(number), 10)
}

// PackBirthdate converts "YYYY-MM-DD" to the YYYYMMDD integer form.
// The date must exist on the calendar.
func PackBirthdate(birthdate string) (uint32, error) {
	parsed, err := time.Parse(birthdateLayout, birthdate)
	if err != nil {
		return 0, &ValidationError{Field: "birthdate", Value: birthdate, Reason: "must have format YYYY-MM-DD"}
	}
	return uint32(parsed.Year()*10000 + int(parsed.Month())*100 + parsed.Day()), nil
}

// UnpackBirthdate converts the YYYYMMDD integer form to "YYYY-MM-DD".
// Values that do not name a real calendar date are rejected rather
// than normalized, so 20230230 is an error and not March 2nd.
func UnpackBirthdate(packed uint32) (string, error) {
	year := packed / 10000
	month := (packed / 100) % 100
	day := packed % 100
	formatted := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if year > 9999 {
		return "", &ValidationError{Field: "birthdate", Value: strconv.FormatUint(uint64(packed), 10), Reason: "year out of range"}
	}
	if _, err := time.Parse(birthdateLayout, formatted); err != nil {
		return "", &ValidationError{Field: "birthdate", Value: strconv.FormatUint(uint64(packed), 10), Reason: "not a calendar date"}
	}
	return formatted, nil
}
