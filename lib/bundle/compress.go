// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundle

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionTag identifies the compression algorithm applied to a
// bundle payload before encryption. The tag is stored in the bundle
// header (1 byte). These values are format constants — changing them
// breaks bundle compatibility.
type CompressionTag uint8

const (
	// CompressionNone indicates an uncompressed payload. Selected
	// when the payload is too small or too dense for compression to
	// pay for itself.
	CompressionNone CompressionTag = 0

	// CompressionLZ4 indicates LZ4 block compression. Fast, modest
	// ratio. Selected when the payload compresses, but not well.
	CompressionLZ4 CompressionTag = 1

	// CompressionZstd indicates zstd at its default level. Best
	// ratio for the text-shaped payloads bundles usually carry (env
	// lines, JSON).
	CompressionZstd CompressionTag = 2
)

// String returns the human-readable name of a compression tag.
func (tag CompressionTag) String() string {
	switch tag {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", tag)
	}
}

// errIncompressible is returned by the compressors when output would
// not be smaller than input. CompressPayload falls back to
// CompressionNone.
var errIncompressible = fmt.Errorf("data is incompressible")

// zstdEncoder and zstdDecoder are reused across calls to avoid
// repeated initialization overhead. Both are safe for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("bundle: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("bundle: zstd decoder initialization failed: " + err.Error())
	}
}

// SelectCompression probes the payload to pick a compression
// algorithm: compress with zstd and check the ratio. At 1.5x or
// better, zstd is worth its CPU; between 1.1x and 1.5x, LZ4 gets most
// of the win for less work; below 1.1x the payload is effectively
// incompressible.
func SelectCompression(payload []byte) CompressionTag {
	if len(payload) == 0 {
		return CompressionNone
	}

	compressed := zstdEncoder.EncodeAll(payload, nil)
	ratio := float64(len(payload)) / float64(len(compressed))

	switch {
	case ratio >= 1.5:
		return CompressionZstd
	case ratio >= 1.1:
		return CompressionLZ4
	default:
		return CompressionNone
	}
}

// CompressPayload compresses the payload with the probed algorithm.
// Returns the compressed bytes and the tag used. Incompressible
// payloads return the input unchanged (no copy) with CompressionNone.
func CompressPayload(payload []byte) ([]byte, CompressionTag, error) {
	tag := SelectCompression(payload)

	compressed, err := compress(payload, tag)
	if err != nil {
		if err == errIncompressible {
			return payload, CompressionNone, nil
		}
		return nil, 0, err
	}
	return compressed, tag, nil
}

// DecompressPayload reverses CompressPayload. The uncompressedSize
// must match the original payload length exactly — this is verified
// and a mismatch returns an error.
func DecompressPayload(compressed []byte, tag CompressionTag, uncompressedSize int) ([]byte, error) {
	switch tag {
	case CompressionNone:
		if len(compressed) != uncompressedSize {
			return nil, fmt.Errorf("uncompressed payload: size %d does not match expected %d",
				len(compressed), uncompressedSize)
		}
		return compressed, nil

	case CompressionLZ4:
		return decompressLZ4(compressed, uncompressedSize)

	case CompressionZstd:
		return decompressZstd(compressed, uncompressedSize)

	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compress(payload []byte, tag CompressionTag) ([]byte, error) {
	switch tag {
	case CompressionNone:
		return payload, nil
	case CompressionLZ4:
		return compressLZ4(payload)
	case CompressionZstd:
		return compressZstd(payload)
	default:
		return nil, fmt.Errorf("unsupported compression tag: %d", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	destination := make([]byte, bound)

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}

	// CompressBlock returns 0 when it determines the data is
	// incompressible.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}

	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

func decompressZstd(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, 0, uncompressedSize)
	result, err := zstdDecoder.DecodeAll(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(result) != uncompressedSize {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(result), uncompressedSize)
	}
	return result, nil
}
