// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import "time"

// TimeBucket returns the bucket index for a moment in time: the Unix
// second floor-divided by the bucket width. All times within one
// bucket share an index, and therefore a derived key; crossing a
// boundary changes both.
//
// Callers validate the time first (see Decrypt); for non-negative
// Unix seconds Go's integer division is the floor division the
// protocol specifies.
func TimeBucket(now time.Time, bucketSeconds int64) int64 {
	return now.Unix() / bucketSeconds
}
