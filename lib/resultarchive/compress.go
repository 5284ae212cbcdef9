// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultarchive

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression names a payload compression.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionLZ4  Compression = "lz4"
	CompressionZstd Compression = "zstd"
)

// ParseCompression validates a configured compression name.
func ParseCompression(name string) (Compression, error) {
	switch compression := Compression(name); compression {
	case CompressionNone, CompressionLZ4, CompressionZstd:
		return compression, nil
	default:
		return "", fmt.Errorf("unknown compression %q", name)
	}
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("resultarchive: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("resultarchive: zstd decoder initialization failed: " + err.Error())
	}
}

// compress returns data compressed with compression and the
// compression actually applied. LZ4 falls back to none when the block
// does not shrink, since an LZ4 block cannot represent that case.
func compress(data []byte, compression Compression) ([]byte, Compression, error) {
	switch compression {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionZstd:
		return zstdEncoder.EncodeAll(data, nil), CompressionZstd, nil
	case CompressionLZ4:
		destination := make([]byte, lz4.CompressBlockBound(len(data)))
		written, err := lz4.CompressBlock(data, destination, nil)
		if err != nil {
			return nil, "", fmt.Errorf("lz4 compress: %w", err)
		}
		if written == 0 || written >= len(data) {
			return data, CompressionNone, nil
		}
		return destination[:written], CompressionLZ4, nil
	default:
		return nil, "", fmt.Errorf("unknown compression %q", compression)
	}
}

// decompress reverses compress. size is the expected uncompressed
// length.
func decompress(payload []byte, compression Compression, size int) ([]byte, error) {
	if size < 0 || size > maxPayloadSize {
		return nil, fmt.Errorf("uncompressed size %d out of range", size)
	}
	var data []byte
	switch compression {
	case CompressionNone:
		data = payload
	case CompressionZstd:
		var err error
		data, err = zstdDecoder.DecodeAll(payload, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
	case CompressionLZ4:
		data = make([]byte, size)
		read, err := lz4.UncompressBlock(payload, data)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompress: %w", err)
		}
		data = data[:read]
	default:
		return nil, fmt.Errorf("unknown compression %q", compression)
	}
	if len(data) != size {
		return nil, fmt.Errorf("%s payload decompressed to %d bytes, expected %d", compression, len(data), size)
	}
	return data, nil
}
