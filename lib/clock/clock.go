// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package clock

import "time"

// Clock abstracts the current-time read for testability. Production
// code injects Real(); tests inject Fake() and step it across time
// bucket boundaries deterministically.
//
// Every production function whose behavior depends on the wall clock
// (time-bucketed key derivation above all) should accept a Clock, or
// be a method on a struct with a Clock field, instead of calling
// time.Now directly.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
