// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundle

import (
	"bytes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// KeySize is the size in bytes of a bundle key file's raw material
// and of the derived encryption key.
const KeySize = 32

// hkdfInfo is the "info" parameter to HKDF-SHA256 when deriving the
// bundle encryption key from the key file. The key file material is
// never used as a cipher key directly; a future format version would
// derive under a different info string, so old and new bundles never
// share a cipher key even when they share a key file.
var hkdfInfo = []byte("vaultapi bundle v1")

// GenerateKeyFile creates a new random bundle key at path: 32 random
// bytes, hex-encoded, mode 0600. Refuses to overwrite an existing
// file — a key file on disk may be the only thing that can open
// bundles already in flight.
func GenerateKeyFile(path string) error {
	raw := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return fmt.Errorf("generating random key: %w", err)
	}
	defer secret.Zero(raw)

	encoded := make([]byte, hex.EncodedLen(KeySize)+1)
	hex.Encode(encoded, raw)
	encoded[len(encoded)-1] = '\n'
	defer secret.Zero(encoded)

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating key file: %w", err)
	}

	_, writeErr := file.Write(encoded)
	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("writing key file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing key file: %w", closeErr)
	}
	return nil
}

// ReadKeyFile loads a bundle key file: either 64 hex characters (as
// written by GenerateKeyFile, surrounding whitespace ignored) or 32
// raw bytes. Returns the raw key material in a secret.Buffer; the
// caller must Close it.
func ReadKeyFile(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	defer secret.Zero(data)

	trimmed := bytes.TrimSpace(data)
	switch len(trimmed) {
	case hex.EncodedLen(KeySize):
		raw := make([]byte, KeySize)
		if _, err := hex.Decode(raw, trimmed); err != nil {
			secret.Zero(raw)
			return nil, fmt.Errorf("%s: decoding hex key: %w", path, err)
		}
		return secret.NewFromBytes(raw)

	case KeySize:
		return secret.NewFromBytes(trimmed)

	default:
		return nil, fmt.Errorf("%s: key must be %d raw bytes or %d hex characters, got %d bytes",
			path, KeySize, hex.EncodedLen(KeySize), len(trimmed))
	}
}

// newAEAD loads the key file, derives the bundle encryption key, and
// builds the XChaCha20-Poly1305 cipher. Key material is zeroed before
// returning; the cipher's internal key schedule is the only copy left.
func newAEAD(keyPath string) (cipher.AEAD, error) {
	master, err := ReadKeyFile(keyPath)
	if err != nil {
		return nil, err
	}
	defer master.Close()

	key, err := deriveKey(master)
	if err != nil {
		return nil, err
	}
	defer key.Close()

	aead, err := chacha20poly1305.NewX(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("creating XChaCha20-Poly1305 cipher: %w", err)
	}
	return aead, nil
}

// deriveKey derives the bundle encryption key from the key file
// material via HKDF-SHA256. The salt is nil: the key file is already
// uniformly random, so HKDF's extract phase with a zero key is
// appropriate per RFC 5869.
func deriveKey(master *secret.Buffer) (*secret.Buffer, error) {
	reader := hkdf.New(sha256.New, master.Bytes(), nil, hkdfInfo)
	derived := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, derived); err != nil {
		secret.Zero(derived)
		return nil, fmt.Errorf("HKDF key derivation failed: %w", err)
	}
	// NewFromBytes copies into mmap and zeros the heap slice.
	return secret.NewFromBytes(derived)
}
