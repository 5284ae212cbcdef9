// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultarchive

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a keyed BLAKE3 hash of an uncompressed payload.
type Digest [32]byte

// String returns the digest as lowercase hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// resultsDomainKey is "lottery.results" in ASCII, zero-padded to the
// 32 bytes BLAKE3 keyed mode requires. Changing it invalidates every
// existing archive.
var resultsDomainKey = [32]byte{
	'l', 'o', 't', 't', 'e', 'r', 'y', '.', 'r', 'e', 's', 'u', 'l', 't', 's', 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

func digest(data []byte) Digest {
	hasher, err := blake3.NewKeyed(resultsDomainKey[:])
	if err != nil {
		// Only a wrong key length fails, and the key is a fixed array.
		panic("resultarchive: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var sum Digest
	copy(sum[:], hasher.Sum(nil))
	return sum
}
