// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of
// calling time.Now directly. In production, Real() provides the
// standard library behavior. In tests, Fake() provides a deterministic
// clock that moves only when Advance or Set is called.
//
// Transit key derivation is a function of the current time bucket, so
// any test that exercises decryption, bucket rollover, or the
// previous-bucket retry needs exact control of "now". That is the only
// reason this package exists: the client performs no periodic work, so
// the interface is a single Now method rather than the full
// timer/ticker surface a daemon would need.
//
// # Wiring Pattern
//
// Add a Clock field to structs whose behavior depends on the wall
// clock:
//
//	type Client struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	c := &Client{clock: clock.Real()}
//
// In tests:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 59, 0, time.UTC))
//	c := &Client{clock: fake}
//	// ... derive, then step across the bucket boundary ...
//	fake.Advance(time.Second)
package clock
