// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"strings"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// Decrypt opens an envelope using the key for the bucket containing
// now. Failures carry a stable *Error code; the first failure in the
// pipeline wins, so a garbage envelope with a bad key length reports
// the key problem, not the encoding problem.
func Decrypt(envelope string, credential *secret.Buffer, now time.Time, params Params) (*payload.Value, error) {
	if now.IsZero() || now.Unix() < 0 {
		return nil, newError(CodeClock, "system clock reads %s, before the unix epoch", now)
	}
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}
	bucket := TimeBucket(now, params.BucketSeconds)
	return DecryptAtBucket(envelope, credential, bucket, params)
}

// DecryptAtBucket opens an envelope with the key for an explicit
// bucket. Callers that tolerate bucket-boundary races retry with
// bucket-1 when this fails with CodeDecryptionFailed; Decrypt itself
// never retries.
func DecryptAtBucket(envelope string, credential *secret.Buffer, bucket int64, params Params) (*payload.Value, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return nil, err
	}

	key, err := DeriveKey(credential, bucket, params.KeyLength)
	if err != nil {
		return nil, err
	}
	aead, err := newAEAD(key)
	key.Close()
	if err != nil {
		return nil, err
	}

	raw, err := decodeEnvelope(envelope)
	if err != nil {
		return nil, err
	}
	if len(raw) < NonceSize+TagSize {
		return nil, newError(CodeTruncatedCiphertext,
			"envelope is %d bytes, need at least %d (nonce plus tag)",
			len(raw), NonceSize+TagSize)
	}
	nonce, ciphertext := raw[:NonceSize], raw[NonceSize:]

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// Wrong key and tampered ciphertext are indistinguishable by
		// construction; report both the same way.
		return nil, newError(CodeDecryptionFailed,
			"authentication failed: wrong key or corrupted envelope")
	}

	value, err := payload.Parse(plaintext)
	secret.Zero(plaintext)
	if err != nil {
		return nil, wrapError(CodeMalformedPlaintext, err, "decrypted payload is not JSON")
	}
	return value, nil
}

// newAEAD builds the AES-GCM cipher for a derived key. AES itself
// rejects lengths other than 16, 24, or 32 bytes, so a Params with an
// unusable KeyLength fails here rather than at Open.
func newAEAD(key *secret.Buffer) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key.Bytes())
	if err != nil {
		return nil, wrapError(CodeKeyConstructionFailed, err, "building cipher")
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, wrapError(CodeKeyConstructionFailed, err, "building AEAD")
	}
	return aead, nil
}

// decodeEnvelope decodes the base64 wrapping. The wire format is
// standard alphabet with padding and nothing else: Go's decoder
// skips CR and LF by default, so those are rejected up front to keep
// parity with the server's strict decoder.
func decodeEnvelope(envelope string) ([]byte, error) {
	if strings.ContainsAny(envelope, "\r\n") {
		return nil, newError(CodeInvalidEncoding, "envelope contains line breaks")
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(envelope)
	if err != nil {
		return nil, wrapError(CodeInvalidEncoding, err, "decoding envelope")
	}
	return raw, nil
}
