// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package payload

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte BLAKE3 digest of a payload's plaintext.
type Digest [32]byte

// payloadDomainKey is the BLAKE3 keyed-hash domain key for payload
// fingerprints. A fixed constant — changing it invalidates every
// recorded fingerprint. The bytes are the ASCII domain name,
// zero-padded to 32, so the key is readable in hex dumps without
// losing any cryptographic property (keyed mode treats it as an
// opaque 32-byte value).
var payloadDomainKey = [32]byte{
	'v', 'a', 'u', 'l', 't', 'a', 'p', 'i', '.',
	'p', 'a', 'y', 'l', 'o', 'a', 'd', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// HashPayload computes the payload-domain BLAKE3 keyed hash of the
// plaintext. Bundle headers store the full digest so tampering with
// the container body is detectable independently of the AEAD tag.
func HashPayload(plaintext []byte) Digest {
	hasher, err := blake3.NewKeyed(payloadDomainKey[:])
	if err != nil {
		// NewKeyed fails only for a key that is not 32 bytes, which
		// the fixed-size array rules out.
		panic("payload: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(plaintext)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Fingerprint returns the short printable form of a payload's digest:
// the first 16 bytes, hex-encoded. This is the form logs, export
// summaries, and doctor output use to name a payload without showing
// it.
func Fingerprint(plaintext []byte) string {
	digest := HashPayload(plaintext)
	return hex.EncodeToString(digest[:16])
}

// FormatDigest returns the full hex encoding of a digest, used where
// the complete value matters (bundle inspection output).
func FormatDigest(digest Digest) string {
	return hex.EncodeToString(digest[:])
}
