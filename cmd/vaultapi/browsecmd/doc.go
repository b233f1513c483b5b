// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package browsecmd implements "vaultapi browse": an interactive
// terminal UI over a decrypted table, with fuzzy key filtering and
// syntax-highlighted value inspection. The TUI itself lives in
// lib/secretui; this package wires it to a connected client and
// routes background logging into the status bar so nothing scribbles
// on the alternate screen.
package browsecmd
