// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package doctorcmd implements "vaultapi doctor": end-to-end
// diagnosis of the client environment, from config parsing through a
// live fetch-and-decrypt probe, with clock skew measurement against
// the server.
package doctorcmd
