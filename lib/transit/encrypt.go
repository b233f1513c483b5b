// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// Encrypt seals a JSON-serializable value into an envelope for the
// bucket containing now. The client only decrypts in normal
// operation; Encrypt exists for the doctor self-test and for test
// fixtures that need valid envelopes.
func Encrypt(value any, credential *secret.Buffer, now time.Time, params Params) (string, error) {
	if now.IsZero() || now.Unix() < 0 {
		return "", newError(CodeClock, "system clock reads %s, before the unix epoch", now)
	}
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return "", err
	}
	bucket := TimeBucket(now, params.BucketSeconds)
	return EncryptAtBucket(value, credential, bucket, params)
}

// EncryptAtBucket seals a value with the key for an explicit bucket.
func EncryptAtBucket(value any, credential *secret.Buffer, bucket int64, params Params) (string, error) {
	params = params.withDefaults()
	if err := params.validate(); err != nil {
		return "", err
	}

	plaintext, err := json.Marshal(value)
	if err != nil {
		return "", wrapError(CodeMalformedPlaintext, err, "serializing payload")
	}

	key, err := DeriveKey(credential, bucket, params.KeyLength)
	if err != nil {
		secret.Zero(plaintext)
		return "", err
	}
	aead, err := newAEAD(key)
	key.Close()
	if err != nil {
		secret.Zero(plaintext)
		return "", err
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		secret.Zero(plaintext)
		return "", wrapError(CodeNonceConstructionFailed, err, "reading random nonce")
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	secret.Zero(plaintext)
	return base64.StdEncoding.EncodeToString(sealed), nil
}
