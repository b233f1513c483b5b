// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package vaultapi wraps the VaultAPI server's HTTP interface and the
// transit decryption that every secret response requires.
//
// The package provides one core type. [Client] holds the server URL,
// the API credential, and the transit parameters, and exposes one
// method per server operation: [Client.GetSecret], [Client.GetSecrets]
// and [Client.GetTable] for retrieval, [Client.PutSecrets] and
// [Client.DeleteSecret] for mutation, and [Client.Health] for an
// unauthenticated reachability probe. Retrieval responses arrive as a
// transit envelope in the response's "detail" field; the client
// unwraps and decrypts them in one step, so callers only ever see
// decrypted [payload.Value] results.
//
// The credential serves double duty: it is the bearer token on every
// request and the input to the time-bucketed key derivation that
// opens the envelopes. It lives in mmap-backed [secret.Buffer] memory
// (locked against swap, excluded from core dumps); the Client takes
// ownership and releases it on Close.
//
// Server-reported failures are returned as [*APIError] with the HTTP
// status and the server's detail message. Transport failures (refused
// connections, TLS, timeouts) are [*RequestError]. Decryption
// failures pass through as [*transit.Error] — a wrong credential and
// a tampered envelope are deliberately indistinguishable there.
//
// Decryption uses the client's own clock. At a bucket boundary the
// server may have sealed the envelope an instant before the key
// rotated; by default that fails deterministically, and
// [ClientConfig.DecryptPreviousBucket] opts in to a single retry with
// the previous bucket's key within the first two seconds of a bucket.
package vaultapi
