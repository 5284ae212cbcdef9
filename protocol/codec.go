// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// maxStringLength is the longest string a 1-byte length prefix can
// describe.
const maxStringLength = 255

// payloadWriter appends fields to a payload buffer. The first encoding
// failure is latched in err and later writes become no-ops, so packet
// encoders can write every field and check once at the end.
type payloadWriter struct {
	messageType MessageType
	buffer      []byte
	err         error
}

func (w *payloadWriter) uint8(value uint8) {
	w.buffer = append(w.buffer, value)
}

func (w *payloadWriter) uint16(value uint16) {
	w.buffer = binary.BigEndian.AppendUint16(w.buffer, value)
}

func (w *payloadWriter) uint32(value uint32) {
	w.buffer = binary.BigEndian.AppendUint32(w.buffer, value)
}

func (w *payloadWriter) string(field, value string) {
	if w.err != nil {
		return
	}
	if len(value) > maxStringLength {
		w.err = &EncodeError{MessageType: w.messageType, Field: field, Reason: fmt.Sprintf("%d bytes exceeds maximum %d", len(value), maxStringLength)}
		return
	}
	if !utf8.ValidString(value) {
		w.err = &EncodeError{MessageType: w.messageType, Field: field, Reason: "not valid UTF-8"}
		return
	}
	w.buffer = append(w.buffer, uint8(len(value)))
	w.buffer = append(w.buffer, value...)
}

// count writes a uint32 element count, rejecting slices too long to
// describe.
func (w *payloadWriter) count(field string, length int) {
	if w.err != nil {
		return
	}
	if uint64(length) > uint64(^uint32(0)) {
		w.err = &EncodeError{MessageType: w.messageType, Field: field, Reason: fmt.Sprintf("%d elements exceeds uint32", length)}
		return
	}
	w.uint32(uint32(length))
}

// payloadReader consumes fields from a payload in order. Every read is
// bounds-checked against the remaining bytes; nothing is ever read past
// the end of the buffer.
type payloadReader struct {
	messageType MessageType
	data        []byte
	offset      int
}

func (r *payloadReader) remaining() int {
	return len(r.data) - r.offset
}

func (r *payloadReader) take(field string, size int) ([]byte, error) {
	if r.remaining() < size {
		return nil, &DecodeError{
			MessageType: r.messageType,
			Field:       field,
			Reason:      fmt.Sprintf("need %d bytes, %d remaining", size, r.remaining()),
		}
	}
	chunk := r.data[r.offset : r.offset+size]
	r.offset += size
	return chunk, nil
}

func (r *payloadReader) uint8(field string) (uint8, error) {
	chunk, err := r.take(field, 1)
	if err != nil {
		return 0, err
	}
	return chunk[0], nil
}

func (r *payloadReader) uint16(field string) (uint16, error) {
	chunk, err := r.take(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(chunk), nil
}

func (r *payloadReader) uint32(field string) (uint32, error) {
	chunk, err := r.take(field, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(chunk), nil
}

func (r *payloadReader) string(field string) (string, error) {
	length, err := r.uint8(field + " length")
	if err != nil {
		return "", err
	}
	chunk, err := r.take(field, int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(chunk) {
		return "", &DecodeError{MessageType: r.messageType, Field: field, Reason: "not valid UTF-8"}
	}
	return string(chunk), nil
}

// count reads a uint32 element count and checks that count elements of
// at least minimumElementSize bytes can fit in what remains. This runs
// before any per-element allocation so a bogus count cannot trigger a
// large make().
func (r *payloadReader) count(field string, minimumElementSize int) (int, error) {
	value, err := r.uint32(field)
	if err != nil {
		return 0, err
	}
	if uint64(value)*uint64(minimumElementSize) > uint64(r.remaining()) {
		return 0, &DecodeError{
			MessageType: r.messageType,
			Field:       field,
			Reason:      fmt.Sprintf("count %d needs at least %d bytes, %d remaining", value, uint64(value)*uint64(minimumElementSize), r.remaining()),
		}
	}
	return int(value), nil
}

// finish rejects trailing bytes after the last field.
func (r *payloadReader) finish() error {
	if r.remaining() != 0 {
		return &DecodeError{MessageType: r.messageType, Field: "payload", Reason: fmt.Sprintf("%d trailing bytes", r.remaining())}
	}
	return nil
}
