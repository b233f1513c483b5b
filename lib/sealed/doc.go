// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package sealed provides age encryption for exported secrets. It
// wraps filippo.io/age for the operations the export/unseal flow
// needs: generate x25519 identities, encrypt to multiple recipients,
// and decrypt with an identity key.
//
// A sealed export is how secrets leave one machine for another without
// ever crossing the wire in the clear: the sender runs
// "vaultapi export --seal-to age1..." against the receiver's public
// key, the receiver runs "vaultapi unseal" with their identity file.
// Ciphertext is base64-encoded so a sealed export is a single
// printable string (safe for mail, tickets, and copy-paste).
//
// Identity keys and decrypted plaintext live in [secret.Buffer] values
// backed by mmap memory outside the Go heap (locked against swap,
// excluded from core dumps, zeroed on Close). Identity files use the
// same format as age-keygen, so keys generated by either tool work
// with the other.
package sealed
