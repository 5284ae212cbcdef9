// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultarchive

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bureau-foundation/lottery/lib/codec"
)

// formatVersion is the archive envelope version Write produces.
const formatVersion = 1

// maxPayloadSize bounds the uncompressed payload Read accepts. A draw
// over 255 agencies with every bet winning stays far below it.
const maxPayloadSize = 256 << 20

// ErrDigestMismatch is returned by Read when the payload does not hash
// to the recorded digest.
var ErrDigestMismatch = errors.New("resultarchive: digest mismatch")

// Record is the archived outcome of a draw.
type Record struct {
	AgencyAmount int                `cbor:"agency_amount"`
	BetCount     int                `cbor:"bet_count"`
	CompletedAt  time.Time          `cbor:"completed_at"`
	Winners      map[uint8][]string `cbor:"winners"`
}

// Info describes an archive file as stored.
type Info struct {
	Format      int
	Compression Compression
	Size        int
	StoredSize  int
	Digest      Digest
}

type envelope struct {
	Format      int         `cbor:"format"`
	Compression Compression `cbor:"compression"`
	Size        int         `cbor:"size"`
	Digest      []byte      `cbor:"digest"`
	Payload     []byte      `cbor:"payload"`
}

// Write encodes record, compresses it, and atomically replaces the
// file at path.
func Write(path string, record Record, compression Compression) (Info, error) {
	payload, err := codec.Marshal(record)
	if err != nil {
		return Info{}, fmt.Errorf("encoding results: %w", err)
	}
	compressed, applied, err := compress(payload, compression)
	if err != nil {
		return Info{}, err
	}
	sum := digest(payload)

	data, err := codec.Marshal(envelope{
		Format:      formatVersion,
		Compression: applied,
		Size:        len(payload),
		Digest:      sum[:],
		Payload:     compressed,
	})
	if err != nil {
		return Info{}, fmt.Errorf("encoding archive envelope: %w", err)
	}
	if err := writeAtomic(path, data); err != nil {
		return Info{}, err
	}
	return Info{
		Format:      formatVersion,
		Compression: applied,
		Size:        len(payload),
		StoredSize:  len(compressed),
		Digest:      sum,
	}, nil
}

// Read loads and verifies the archive at path.
func Read(path string) (Record, Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, Info{}, err
	}

	var stored envelope
	if err := codec.Unmarshal(data, &stored); err != nil {
		return Record{}, Info{}, fmt.Errorf("parsing archive %s: %w", path, err)
	}
	if stored.Format != formatVersion {
		return Record{}, Info{}, fmt.Errorf("archive %s has format %d, want %d", path, stored.Format, formatVersion)
	}
	info := Info{
		Format:      stored.Format,
		Compression: stored.Compression,
		Size:        stored.Size,
		StoredSize:  len(stored.Payload),
	}
	if len(stored.Digest) != len(info.Digest) {
		return Record{}, info, fmt.Errorf("archive %s has a %d-byte digest", path, len(stored.Digest))
	}
	copy(info.Digest[:], stored.Digest)

	payload, err := decompress(stored.Payload, stored.Compression, stored.Size)
	if err != nil {
		return Record{}, info, fmt.Errorf("archive %s: %w", path, err)
	}
	sum := digest(payload)
	if !bytes.Equal(sum[:], stored.Digest) {
		return Record{}, info, fmt.Errorf("%w in %s", ErrDigestMismatch, path)
	}

	var record Record
	if err := codec.Unmarshal(payload, &record); err != nil {
		return Record{}, info, fmt.Errorf("decoding results in %s: %w", path, err)
	}
	return record, info, nil
}

// writeAtomic writes data to a temporary sibling of path, syncs it,
// renames it over path, and syncs the directory.
func writeAtomic(path string, data []byte) error {
	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating %s: %w", temporaryPath, err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing %s: %w", temporaryPath, err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing %s: %w", temporaryPath, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing %s: %w", temporaryPath, err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming archive into place: %w", err)
	}

	if directory, err := os.Open(filepath.Dir(path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}
