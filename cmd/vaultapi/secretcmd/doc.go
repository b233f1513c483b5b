// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package secretcmd implements the day-to-day secret commands: get,
// table, put, and delete. The commands wrap lib/vaultapi, providing
// flag parsing, table-name defaulting from config, and output
// formatting (JSON, shell exports, raw bytes).
package secretcmd
