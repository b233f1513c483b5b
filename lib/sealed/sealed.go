// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package sealed

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"filippo.io/age"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// Identity holds an age x25519 identity. The secret key is stored in a
// secret.Buffer (mmap-backed, locked against swap, excluded from core
// dumps). The recipient string is the corresponding public key, safe
// to publish.
//
// The caller must call Close when the identity is no longer needed.
type Identity struct {
	// Key is the secret key in AGE-SECRET-KEY-1... format, stored in
	// mmap memory outside the Go heap. Must never be logged, stored
	// unprotected on disk, or included in CLI arguments.
	Key *secret.Buffer

	// Recipient is the corresponding public key in age1... format.
	Recipient string
}

// Close releases the secret key memory (zeros, unlocks, unmaps).
// Idempotent — safe to call multiple times.
func (i *Identity) Close() error {
	if i.Key != nil {
		return i.Key.Close()
	}
	return nil
}

// GenerateIdentity generates a new age x25519 identity. The secret key
// is returned in a secret.Buffer.
//
// The caller must call Close on the returned Identity when done.
func GenerateIdentity() (*Identity, error) {
	generated, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age identity: %w", err)
	}

	// Move the secret key into mmap-backed memory immediately. The
	// string returned by the age library is on the heap and will be
	// GC'd — unavoidable, since the library API is string-based. The
	// mmap buffer is the durable copy.
	key, err := secret.NewFromString(generated.String())
	if err != nil {
		return nil, fmt.Errorf("protecting identity key: %w", err)
	}

	return &Identity{
		Key:       key,
		Recipient: generated.Recipient().String(),
	}, nil
}

// WriteFile writes the identity to path in age-keygen's file format
// (comment lines with creation time and public key, then the secret
// key line), mode 0600. Refuses to overwrite an existing file: an
// identity file on disk is the only copy of a key that can decrypt
// things, and clobbering one is unrecoverable.
func (i *Identity) WriteFile(path string) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("creating identity file: %w", err)
	}

	content := fmt.Sprintf(
		"# created: %s\n# public key: %s\n%s\n",
		time.Now().UTC().Format(time.RFC3339), i.Recipient, i.Key.String(),
	)
	_, writeErr := file.WriteString(content)
	closeErr := file.Close()

	if writeErr != nil {
		return fmt.Errorf("writing identity file: %w", writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("closing identity file: %w", closeErr)
	}
	return nil
}

// ReadIdentityFile loads an age identity file (as written by WriteFile
// or age-keygen): blank lines and # comments are skipped, and the
// first AGE-SECRET-KEY-1 line is the key. The key is validated and
// returned in a secret.Buffer; the caller must Close it.
func ReadIdentityFile(path string) (*secret.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading identity file: %w", err)
	}
	defer secret.Zero(data)

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "AGE-SECRET-KEY-1") {
			continue
		}

		if _, err := age.ParseX25519Identity(line); err != nil {
			return nil, fmt.Errorf("%s: invalid identity key: %w", path, err)
		}
		key, err := secret.NewFromString(line)
		if err != nil {
			return nil, fmt.Errorf("protecting identity key: %w", err)
		}
		return key, nil
	}

	return nil, fmt.Errorf("%s: no AGE-SECRET-KEY-1 line found", path)
}

// Encrypt encrypts plaintext to one or more recipients given by their
// age public key strings (age1... format). Returns the ciphertext as a
// standard base64-encoded string.
//
// At least one recipient is required. For a sealed export, recipients
// are typically the receiving machine's key plus the operator's own.
func Encrypt(plaintext []byte, recipientKeys []string) (string, error) {
	if len(recipientKeys) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}

	recipients := make([]age.Recipient, 0, len(recipientKeys))
	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return "", fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		recipients = append(recipients, recipient)
	}

	var ciphertext bytes.Buffer
	writer, err := age.Encrypt(&ciphertext, recipients...)
	if err != nil {
		return "", fmt.Errorf("creating age encryptor: %w", err)
	}
	if _, err := writer.Write(plaintext); err != nil {
		return "", fmt.Errorf("writing plaintext to age encryptor: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing age encryption: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext.Bytes()), nil
}

// Decrypt decrypts a base64-encoded sealed export using the given
// identity key. Returns the plaintext in a secret.Buffer (mmap-backed,
// zeroed on close).
//
// The identity key is borrowed (read via String() to parse the age
// identity) and is NOT closed by this function. The caller must Close
// the returned buffer when the plaintext is no longer needed.
func Decrypt(ciphertext string, identityKey *secret.Buffer) (*secret.Buffer, error) {
	// The key leaves protected memory only here, into the age parser.
	// The heap copy is brief and call-scoped.
	identity, err := age.ParseX25519Identity(identityKey.String())
	if err != nil {
		return nil, fmt.Errorf("parsing identity key: %w", err)
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(ciphertext))
	if err != nil {
		return nil, fmt.Errorf("decoding base64 ciphertext: %w", err)
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), identity)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading decrypted plaintext: %w", err)
	}
	if len(plaintext) == 0 {
		// An export is never empty; an empty result means the sealed
		// file was not produced by this tool.
		return nil, fmt.Errorf("sealed file decrypted to empty plaintext")
	}

	buffer, err := secret.NewFromBytes(plaintext)
	if err != nil {
		secret.Zero(plaintext)
		return nil, fmt.Errorf("protecting decrypted plaintext: %w", err)
	}
	return buffer, nil
}

// ParseRecipient validates an age public key string. Returns an error
// if the key is not a valid age x25519 public key. Used to reject bad
// --seal-to values before any secrets are fetched.
func ParseRecipient(recipientKey string) error {
	if _, err := age.ParseX25519Recipient(recipientKey); err != nil {
		return fmt.Errorf("invalid age recipient %q: %w", recipientKey, err)
	}
	return nil
}
