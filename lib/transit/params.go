// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

// Protocol constants. These are wire constants shared with the
// server — changing them breaks every deployed vault.
const (
	// NonceSize is the GCM nonce length prefixed to the ciphertext.
	NonceSize = 12

	// TagSize is the GCM authentication tag length appended by Seal.
	TagSize = 16

	// MaxKeyLength is the SHA-256 digest size; the derived key is a
	// truncation of the digest and can never exceed it.
	MaxKeyLength = 32

	// DefaultKeyLength is the full digest: AES-256.
	DefaultKeyLength = 32

	// DefaultBucketSeconds is the default key rotation interval.
	DefaultBucketSeconds = 60
)

// Params are the tunable protocol parameters. The zero value means
// "defaults": KeyLength 32, BucketSeconds 60. Deployments running
// reduced-strength profiles set KeyLength to another valid AES size
// (16 or 24); both sides must agree.
type Params struct {
	// KeyLength is the derived key length in bytes, 1..32. Values
	// that are not an AES key size (16, 24, 32) pass derivation but
	// fail AEAD construction.
	KeyLength int

	// BucketSeconds is the time bucket width in seconds, > 0.
	BucketSeconds int64
}

// DefaultParams returns the protocol defaults explicitly.
func DefaultParams() Params {
	return Params{KeyLength: DefaultKeyLength, BucketSeconds: DefaultBucketSeconds}
}

// withDefaults fills zero fields with the protocol defaults.
func (p Params) withDefaults() Params {
	if p.KeyLength == 0 {
		p.KeyLength = DefaultKeyLength
	}
	if p.BucketSeconds == 0 {
		p.BucketSeconds = DefaultBucketSeconds
	}
	return p
}

// validate rejects parameter values the protocol cannot honor.
func (p Params) validate() error {
	if p.KeyLength < 1 || p.KeyLength > MaxKeyLength {
		return newError(CodeKeyConstructionFailed,
			"key length %d out of range 1..%d", p.KeyLength, MaxKeyLength)
	}
	if p.BucketSeconds <= 0 {
		return newError(CodeKeyConstructionFailed,
			"bucket width %d must be positive", p.BucketSeconds)
	}
	return nil
}
