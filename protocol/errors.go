// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import "fmt"

// DecodeError reports bytes that do not form a valid packet: an
// unknown message type, a field running past the end of the payload,
// an inconsistent count, or leftover bytes after the last field.
type DecodeError struct {
	MessageType MessageType
	Field       string
	Reason      string
}

func (e *DecodeError) Error() string {
	if e.MessageType == 0 {
		return fmt.Sprintf("decoding %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("decoding %s packet: %s: %s", e.MessageType, e.Field, e.Reason)
}

// EncodeError reports a packet that cannot be represented on the wire,
// such as a string longer than 255 bytes.
type EncodeError struct {
	MessageType MessageType
	Field       string
	Reason      string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encoding %s packet: %s: %s", e.MessageType, e.Field, e.Reason)
}
