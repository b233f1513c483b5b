// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a decrypted secret payload: the exact plaintext bytes plus
// their decoded JSON form. Construct only through [Parse], which
// guarantees the bytes are valid JSON.
type Value struct {
	raw     []byte
	decoded any
}

// Parse validates raw as a single JSON document and returns a Value
// holding a private copy of the bytes. The caller may zero its own
// slice afterward. Numbers decode as json.Number.
func Parse(raw []byte) (*Value, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var decoded any
	if err := decoder.Decode(&decoded); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	// A single document only: reject trailing non-whitespace content.
	if decoder.More() {
		return nil, fmt.Errorf("payload has trailing data after JSON value")
	}

	owned := make([]byte, len(raw))
	copy(owned, raw)
	return &Value{raw: owned, decoded: decoded}, nil
}

// Raw returns the payload's exact plaintext bytes. The slice is the
// Value's own copy; treat it as read-only.
func (v *Value) Raw() []byte { return v.raw }

// Interface returns the decoded form: map[string]any for objects,
// []any for arrays, string, json.Number, bool, or nil.
func (v *Value) Interface() any { return v.decoded }

// MarshalJSON returns the plaintext exactly as decrypted.
func (v *Value) MarshalJSON() ([]byte, error) {
	return v.raw, nil
}

// Map returns the decoded object and true when the payload's top level
// is a JSON object, which is what the vault serves for key and table
// fetches. Scalar and array payloads return (nil, false).
func (v *Value) Map() (map[string]any, bool) {
	object, ok := v.decoded.(map[string]any)
	return object, ok
}

// Fingerprint returns the payload's fingerprint (see the package-level
// Fingerprint function).
func (v *Value) Fingerprint() string {
	return Fingerprint(v.raw)
}
