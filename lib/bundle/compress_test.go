// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundle

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func compressibleData() []byte {
	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i % 17)
	}
	return data
}

func randomData(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	return data
}

func TestCompressionTagString(t *testing.T) {
	tests := []struct {
		tag  CompressionTag
		want string
	}{
		{CompressionNone, "none"},
		{CompressionLZ4, "lz4"},
		{CompressionZstd, "zstd"},
		{CompressionTag(99), "unknown(99)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.tag.String(); got != tt.want {
				t.Errorf("CompressionTag(%d).String() = %q, want %q", tt.tag, got, tt.want)
			}
		})
	}
}

func TestLZ4Roundtrip(t *testing.T) {
	data := compressibleData()

	compressed, err := compressLZ4(data)
	if err != nil {
		t.Fatalf("compressLZ4 failed: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("lz4 did not shrink: %d >= %d", len(compressed), len(data))
	}

	decompressed, err := DecompressPayload(compressed, CompressionLZ4, len(data))
	if err != nil {
		t.Fatalf("DecompressPayload(lz4) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("lz4 roundtrip corrupted the data")
	}
}

func TestZstdRoundtrip(t *testing.T) {
	data := compressibleData()

	compressed, err := compressZstd(data)
	if err != nil {
		t.Fatalf("compressZstd failed: %v", err)
	}
	if len(compressed) >= len(data) {
		t.Errorf("zstd did not shrink: %d >= %d", len(compressed), len(data))
	}

	decompressed, err := DecompressPayload(compressed, CompressionZstd, len(data))
	if err != nil {
		t.Fatalf("DecompressPayload(zstd) failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("zstd roundtrip corrupted the data")
	}
}

func TestLZ4Incompressible(t *testing.T) {
	if _, err := compressLZ4(randomData(t, 4096)); err != errIncompressible {
		t.Errorf("compressLZ4(random) error = %v, want errIncompressible", err)
	}
}

func TestSelectCompression(t *testing.T) {
	if tag := SelectCompression(compressibleData()); tag != CompressionZstd {
		t.Errorf("repetitive data selected %s, want zstd", tag)
	}
	if tag := SelectCompression(randomData(t, 4096)); tag != CompressionNone {
		t.Errorf("random data selected %s, want none", tag)
	}
	if tag := SelectCompression(nil); tag != CompressionNone {
		t.Errorf("empty data selected %s, want none", tag)
	}
}

func TestCompressPayloadFallback(t *testing.T) {
	data := randomData(t, 4096)

	compressed, tag, err := CompressPayload(data)
	if err != nil {
		t.Fatalf("CompressPayload failed: %v", err)
	}
	if tag != CompressionNone {
		t.Errorf("incompressible payload got tag %s, want none", tag)
	}
	// Fallback returns the input unchanged, not a copy.
	if &compressed[0] != &data[0] {
		t.Error("CompressionNone fallback should return the same slice")
	}
}

func TestCompressPayloadAuto(t *testing.T) {
	data := compressibleData()

	compressed, tag, err := CompressPayload(data)
	if err != nil {
		t.Fatalf("CompressPayload failed: %v", err)
	}
	if tag != CompressionZstd {
		t.Errorf("tag = %s, want zstd", tag)
	}

	decompressed, err := DecompressPayload(compressed, tag, len(data))
	if err != nil {
		t.Fatalf("DecompressPayload failed: %v", err)
	}
	if !bytes.Equal(decompressed, data) {
		t.Error("auto compression roundtrip corrupted the data")
	}
}

func TestDecompressPayloadNoneSizeMismatch(t *testing.T) {
	data := []byte("five bytes extra")
	if _, err := DecompressPayload(data, CompressionNone, len(data)+5); err == nil {
		t.Error("DecompressPayload(none) should fail when size does not match")
	}
}

func TestDecompressPayloadUnknownTag(t *testing.T) {
	if _, err := DecompressPayload([]byte("data"), CompressionTag(99), 4); err == nil {
		t.Error("DecompressPayload should reject an unknown tag")
	}
}

func TestDecompressPayloadSizeMismatch(t *testing.T) {
	data := compressibleData()
	compressed, err := compressZstd(data)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := DecompressPayload(compressed, CompressionZstd, len(data)-1); err == nil {
		t.Error("DecompressPayload(zstd) should fail when the size does not match")
	}
}
