// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import (
	"errors"
	"fmt"
)

// Code identifies a class of transit protocol failure. The string
// values are stable: CLI output, logs, and tests match on them.
type Code string

const (
	// CodeClock: the provided time is unusable (zero value or before
	// the Unix epoch), so no bucket can be computed.
	CodeClock Code = "clock_error"

	// CodeInvalidEncoding: the envelope is not valid standard-alphabet
	// base64 with padding.
	CodeInvalidEncoding Code = "invalid_encoding"

	// CodeTruncatedCiphertext: the decoded blob is shorter than a
	// nonce plus an authentication tag, so there is nothing to open.
	CodeTruncatedCiphertext Code = "truncated_ciphertext"

	// CodeKeyConstructionFailed: the derivation parameters are invalid
	// or the derived bytes do not form an AES key.
	CodeKeyConstructionFailed Code = "key_construction_failed"

	// CodeNonceConstructionFailed: the system RNG failed while drawing
	// a fresh nonce. Encrypt-path only; on decrypt the nonce is part
	// of the blob and short blobs are caught as truncation.
	CodeNonceConstructionFailed Code = "nonce_construction_failed"

	// CodeDecryptionFailed: AEAD authentication failed. Wrong bucket,
	// wrong credential, and tampering are indistinguishable here.
	CodeDecryptionFailed Code = "decryption_failed"

	// CodeMalformedPlaintext: decryption succeeded but the plaintext
	// is not a single valid JSON document.
	CodeMalformedPlaintext Code = "malformed_plaintext"
)

// Error is a typed transit protocol failure.
type Error struct {
	// Code is the failure class.
	Code Code

	// Message describes the failure. Never contains credential or key
	// material.
	Message string

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("transit: %s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("transit: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// newError constructs an Error with a formatted message.
func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// wrapError constructs an Error around a cause.
func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: cause}
}

// IsTransitError reports whether err is a transit error with one of
// the given codes. With no codes, it matches any transit error.
func IsTransitError(err error, codes ...Code) bool {
	var transitError *Error
	if !errors.As(err, &transitError) {
		return false
	}
	if len(codes) == 0 {
		return true
	}
	for _, code := range codes {
		if transitError.Code == code {
			return true
		}
	}
	return false
}
