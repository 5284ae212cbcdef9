// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resultarchive records a completed draw on disk so the result
// outlives the server process.
//
// An archive file is one CBOR map:
//
//	{format: 1, compression: "zstd", size: N, digest: h'…', payload: h'…'}
//
// payload is the CBOR encoding of a [Record], compressed as named.
// size is the uncompressed length. digest is a BLAKE3 hash of the
// uncompressed bytes keyed with the "lottery.results" domain key, so
// [Read] detects corruption after decompression and a digest from
// another context never matches.
//
// [Write] replaces the file atomically: the data goes to a temporary
// sibling that is synced and renamed into place, and the directory is
// synced after the rename.
package resultarchive
