// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package bundle implements the encrypted export container: a single
// file carrying an exported secret payload for machine-to-machine
// handoff with a shared key file (CI secrets distribution, air-gapped
// transfer).
//
// File layout:
//
//	[Magic: "VBUN"] [Version: 0x01] [Header length: uint32 BE]
//	[Header: deterministic CBOR] [Nonce: 24 bytes] [Ciphertext+Tag]
//
// The header describes the payload (creation time, tables, entry
// count, compression, uncompressed size, BLAKE3 fingerprint) and is
// readable without the key — Inspect answers "what is this file?"
// before any secret material is touched. Everything before the nonce
// is bound as AEAD associated data, so a tampered header fails to
// open even though it parses.
//
// The payload is compressed before encryption (lz4 or zstd, probed
// per payload) and encrypted with XChaCha20-Poly1305 under a key
// derived from the key file via HKDF-SHA256. Structural checks
// (length, magic, version) run before any cryptography.
package bundle

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/thevickypedia/VaultAPI-Client/lib/codec"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// Version is the container format version byte.
const Version byte = 0x01

// magic is the four-byte signature at the start of every bundle.
var magic = [4]byte{'V', 'B', 'U', 'N'}

const (
	// preambleSize is magic + version byte + header length prefix.
	preambleSize = 4 + 1 + 4

	// maxHeaderSize bounds the header length field. A corrupt or
	// hostile length prefix must not drive a large allocation before
	// anything has been authenticated.
	maxHeaderSize = 1 << 20

	// minBundleSize is the smallest structurally possible bundle:
	// preamble, a one-byte header, the nonce, and the tag of an
	// empty ciphertext.
	minBundleSize = preambleSize + 1 + chacha20poly1305.NonceSizeX + chacha20poly1305.Overhead
)

// Header describes a bundle's payload. It is stored as deterministic
// CBOR between the preamble and the nonce, readable without the key,
// and bound as AEAD associated data so any modification is caught at
// decryption.
type Header struct {
	// CreatedAt is the bundle's creation time, unix seconds.
	CreatedAt int64 `cbor:"created_at"`

	// Tables lists the tables the payload was exported from, sorted.
	Tables []string `cbor:"tables,omitempty"`

	// EntryCount is the number of exported secrets.
	EntryCount int `cbor:"entry_count"`

	// Compression is the algorithm applied before encryption.
	Compression CompressionTag `cbor:"compression"`

	// PayloadSize is the uncompressed payload length in bytes.
	PayloadSize uint64 `cbor:"payload_size"`

	// Fingerprint is the BLAKE3-256 hash of the uncompressed
	// payload. It identifies the payload across re-encryptions: two
	// bundles of the same export share a fingerprint even though
	// their ciphertexts differ.
	Fingerprint []byte `cbor:"fingerprint"`
}

// Meta is the caller-provided part of a bundle header.
type Meta struct {
	// CreatedAt stamps the header; zero means time.Now.
	CreatedAt time.Time

	// Tables names the tables the payload came from.
	Tables []string

	// EntryCount is the number of exported secrets.
	EntryCount int
}

// Write creates a bundle at path (mode 0600, existing file truncated)
// containing payload encrypted under the key file at keyPath. The
// payload slice is not consumed — the caller remains responsible for
// zeroing it.
func Write(path string, payload []byte, meta Meta, keyPath string) error {
	if len(payload) == 0 {
		return fmt.Errorf("bundle payload is empty")
	}

	fingerprint := blake3.Sum256(payload)

	compressed, tag, err := CompressPayload(payload)
	if err != nil {
		return fmt.Errorf("compressing payload: %w", err)
	}
	// With CompressionNone the compressed slice aliases the
	// caller's payload; only zero what this function allocated.
	if tag != CompressionNone {
		defer secret.Zero(compressed)
	}

	createdAt := meta.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	tables := append([]string(nil), meta.Tables...)
	sort.Strings(tables)

	headerBytes, err := codec.Marshal(Header{
		CreatedAt:   createdAt.Unix(),
		Tables:      tables,
		EntryCount:  meta.EntryCount,
		Compression: tag,
		PayloadSize: uint64(len(payload)),
		Fingerprint: fingerprint[:],
	})
	if err != nil {
		return fmt.Errorf("encoding header: %w", err)
	}
	if len(headerBytes) > maxHeaderSize {
		return fmt.Errorf("header is %d bytes, limit is %d", len(headerBytes), maxHeaderSize)
	}

	aead, err := newAEAD(keyPath)
	if err != nil {
		return err
	}

	var nonce [chacha20poly1305.NonceSizeX]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generating random nonce: %w", err)
	}

	// Everything before the nonce is associated data.
	prefix := make([]byte, preambleSize+len(headerBytes))
	copy(prefix, magic[:])
	prefix[4] = Version
	binary.BigEndian.PutUint32(prefix[5:9], uint32(len(headerBytes)))
	copy(prefix[preambleSize:], headerBytes)

	sealed := aead.Seal(nil, nonce[:], compressed, prefix)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating bundle file: %w", err)
	}

	_, writeErr := file.Write(prefix)
	if writeErr == nil {
		_, writeErr = file.Write(nonce[:])
	}
	if writeErr == nil {
		_, writeErr = file.Write(sealed)
	}
	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("writing bundle file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing bundle file: %w", closeErr)
	}
	return nil
}

// Read opens the bundle at path with the key file at keyPath and
// returns its header and decrypted payload. The payload comes back in
// a secret.Buffer (mmap-backed, zeroed on close); the caller must
// Close it.
func Read(path string, keyPath string) (*Header, *secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading bundle: %w", err)
	}

	headerBytes, rest, err := splitBundle(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	var header Header
	if err := codec.Unmarshal(headerBytes, &header); err != nil {
		return nil, nil, fmt.Errorf("%s: decoding header: %w", path, err)
	}

	aead, err := newAEAD(keyPath)
	if err != nil {
		return nil, nil, err
	}

	nonce := rest[:chacha20poly1305.NonceSizeX]
	ciphertext := rest[chacha20poly1305.NonceSizeX:]
	prefix := data[:preambleSize+len(headerBytes)]

	compressed, err := aead.Open(nil, nonce, ciphertext, prefix)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: authentication failed (wrong key or tampered file)", path)
	}

	payload, err := DecompressPayload(compressed, header.Compression, int(header.PayloadSize))
	if err != nil {
		secret.Zero(compressed)
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if header.Compression != CompressionNone {
		secret.Zero(compressed)
	}

	// The AEAD already authenticated the compressed bytes; the
	// fingerprint check covers the decompression step.
	sum := blake3.Sum256(payload)
	if !bytes.Equal(sum[:], header.Fingerprint) {
		secret.Zero(payload)
		return nil, nil, fmt.Errorf("%s: payload fingerprint mismatch", path)
	}

	buffer, err := secret.NewFromBytes(payload)
	if err != nil {
		secret.Zero(payload)
		return nil, nil, fmt.Errorf("protecting payload: %w", err)
	}
	return &header, buffer, nil
}

// Inspect parses the bundle header at path without the key. Nothing
// it returns is authenticated — a tampered header inspects cleanly
// and only fails at Read.
func Inspect(path string) (*Header, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading bundle: %w", err)
	}

	headerBytes, _, err := splitBundle(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var header Header
	if err := codec.Unmarshal(headerBytes, &header); err != nil {
		return nil, fmt.Errorf("%s: decoding header: %w", path, err)
	}
	return &header, nil
}

// InspectRaw returns the bundle header in CBOR diagnostic notation.
// Works even when the header does not decode into Header — the
// escape hatch for looking at bundles from a newer writer.
func InspectRaw(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading bundle: %w", err)
	}

	headerBytes, _, err := splitBundle(data)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	notation, err := codec.Diagnose(headerBytes)
	if err != nil {
		return "", fmt.Errorf("%s: diagnosing header: %w", path, err)
	}
	return notation, nil
}

// splitBundle performs the structural checks (length, magic, version,
// header bounds) and splits the file into header bytes and the
// nonce+ciphertext remainder. No cryptography happens here.
func splitBundle(data []byte) (headerBytes []byte, rest []byte, err error) {
	if len(data) < minBundleSize {
		return nil, nil, fmt.Errorf("file is %d bytes, too short to be a bundle (minimum %d)",
			len(data), minBundleSize)
	}
	if !bytes.Equal(data[:4], magic[:]) {
		return nil, nil, fmt.Errorf("not a bundle file (bad magic)")
	}
	if data[4] != Version {
		return nil, nil, fmt.Errorf("bundle version %d is not supported (expected %d)", data[4], Version)
	}

	headerLength := binary.BigEndian.Uint32(data[5:9])
	if headerLength == 0 || headerLength > maxHeaderSize {
		return nil, nil, fmt.Errorf("header length %d is out of range", headerLength)
	}
	end := preambleSize + int(headerLength)
	if end+chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead > len(data) {
		return nil, nil, fmt.Errorf("truncated: header length %d leaves no room for nonce and ciphertext",
			headerLength)
	}

	return data[preambleSize:end], data[end:], nil
}
