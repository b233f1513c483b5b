// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package doctor provides the shared check-result vocabulary for the
// vaultapi doctor command: result constructors, checklist rendering,
// and the JSON output shape.
package doctor
