// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secret

import "runtime"

// Zero overwrites a byte slice with zeros. Use it on transient heap
// copies of secret material (file contents, decoded JSON, request
// bodies) as soon as they have served their purpose. The KeepAlive
// prevents the compiler from eliding the wipe of a slice it considers
// dead.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
	runtime.KeepAlive(data)
}
