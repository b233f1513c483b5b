// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package transit implements the vault's transit decryption protocol:
// recovering secret payloads from the time-bucketed AES-256-GCM
// envelopes the server returns.
//
// # Key schedule
//
// The server and client share one API credential and derive matching
// keys from the wall clock. Unix time divides into fixed-width buckets
// (60 seconds by default); the key for a bucket is
//
//	truncate(SHA-256("<decimal bucket>" + "." + credential), KeyLength)
//
// with KeyLength 32 by default. Both sides compute this independently:
// no key ever travels on the wire, and an envelope is only decryptable
// while the clock sits in the bucket it was encrypted in.
//
// # Envelope format
//
// An envelope is standard base64 (padded, strict) of
//
//	nonce (12 bytes) || ciphertext || GCM tag (16 bytes)
//
// sealed with empty additional authenticated data. The plaintext must
// be a single JSON document; [Decrypt] returns it as a
// [payload.Value].
//
// # Failure taxonomy
//
// Every failure is a typed [*Error] with a stable [Code]; the package
// never terminates the process. The codes mirror the decrypt pipeline
// stage that failed, and the first failing stage wins. Note that
// [CodeDecryptionFailed] deliberately conflates a wrong key (clock
// drift across a bucket boundary, wrong credential) with tampering:
// AEAD authentication cannot distinguish them, so the taxonomy does
// not pretend to.
//
// # Boundary behavior
//
// A ciphertext produced near the end of a bucket fails once the clock
// crosses into the next one. That is a protocol property, not a bug:
// this package performs no neighboring-bucket retries. The client
// layer offers a bounded previous-bucket retry as an explicit opt-in,
// built on [DecryptAtBucket].
//
// All functions are pure: the current time is always a parameter,
// which is what makes boundary behavior testable to the second.
package transit
