// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package clock

import "time"

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
