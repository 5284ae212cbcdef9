// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration shared by the operator
// status socket and the results archive. Encoding is Core
// Deterministic (RFC 8949 §4.2), so the same value always produces the
// same bytes; the archive digest depends on that. Time values encode as
// RFC 3339 text.
//
// Types serialized only as CBOR use `cbor` struct tags. Types that are
// also printed as JSON by lottery-ctl use `json` tags, which
// fxamacker/cbor reads when no `cbor` tag is present.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
//	encoder := codec.NewEncoder(conn)
//	decoder := codec.NewDecoder(conn)
package codec
