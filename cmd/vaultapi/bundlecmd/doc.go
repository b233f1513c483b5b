// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package bundlecmd implements the "vaultapi bundle" command group:
// key file creation, keyless header inspection, and bundle decryption.
// The commands wrap lib/bundle.
package bundlecmd
