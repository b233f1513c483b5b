// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package codec provides the standard CBOR encoding configuration.
//
// The client uses two serialization formats with a clear boundary:
//
//   - JSON for external interfaces: the vault's HTTP API, decrypted
//     secret payloads, export manifests, and CLI output.
//   - CBOR for the bundle container: the structured header of an
//     encrypted export bundle (lib/bundle).
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items.
// Same logical data always produces identical bytes, so a bundle
// written twice from the same inputs has the same header bytes and the
// same fingerprint.
//
// Usage:
//
//	data, err := codec.Marshal(header)
//	err = codec.Unmarshal(data, &header)
//
// Bundle header types carry `cbor` struct tags: they are only ever
// serialized as CBOR and never appear on the JSON side of the
// boundary.
package codec
