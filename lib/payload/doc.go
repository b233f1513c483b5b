// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package payload represents decrypted secret payloads.
//
// A transit envelope decrypts to a JSON document. [Parse] validates
// the bytes and wraps them in a [Value], which keeps both the exact
// plaintext (for re-serialization and fingerprinting) and the decoded
// form (for structured access). Numbers decode as json.Number so that
// re-rendering never loses precision.
//
// [Value.Flatten] turns an object payload into environment-variable
// pairs for dotenv-style export: scalars render bare, nested
// structures re-encode as compact JSON, and key names mangle through
// [EnvName] with collision detection.
//
// [Fingerprint] names a payload without exposing it: a BLAKE3 keyed
// hash under a fixed domain key, truncated for log lines and export
// summaries. Anything that must mention a payload in output that is
// not the payload itself (debug logs, summaries, bundle headers) uses
// the fingerprint.
package payload
