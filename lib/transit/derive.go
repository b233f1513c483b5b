// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import (
	"crypto/sha256"
	"strconv"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// DeriveKey computes the transit key for a bucket:
//
//	truncate(SHA-256("<decimal bucket>" + "." + credential), keyLength)
//
// The exact byte string matters — the server hashes the same
// concatenation. The derived key is returned in a protected buffer;
// the caller must Close it. Derivation is deterministic: the same
// credential, bucket, and length always produce the same key.
func DeriveKey(credential *secret.Buffer, bucket int64, keyLength int) (*secret.Buffer, error) {
	if credential == nil {
		return nil, newError(CodeKeyConstructionFailed, "credential is required")
	}
	if keyLength < 1 || keyLength > MaxKeyLength {
		return nil, newError(CodeKeyConstructionFailed,
			"key length %d out of range 1..%d", keyLength, MaxKeyLength)
	}

	hasher := sha256.New()
	hasher.Write(strconv.AppendInt(nil, bucket, 10))
	hasher.Write([]byte{'.'})
	hasher.Write(credential.Bytes())
	digest := hasher.Sum(nil)

	// NewFromBytes zeros the truncated prefix; wipe the rest of the
	// digest ourselves.
	key, err := secret.NewFromBytes(digest[:keyLength])
	secret.Zero(digest)
	if err != nil {
		return nil, wrapError(CodeKeyConstructionFailed, err, "protecting derived key")
	}
	return key, nil
}
