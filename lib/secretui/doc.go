// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package secretui implements a terminal user interface for browsing
// a vault table. Built on bubbletea (Elm architecture), it provides a
// split-pane view: a fuzzy-filterable list of secret keys on the left
// and a syntax-highlighted JSON view of the selected value on the
// right.
//
// The [Source] abstraction decouples the TUI from the network:
// [ClientSource] fetches and decrypts a table through a
// vaultapi.Client, while tests supply an in-memory source. The TUI
// code is identical in both cases. Fetches run asynchronously through
// the bubbletea command loop, so the interface stays responsive while
// a refresh is in flight.
//
// Data flow:
//
//	[vault server] --get-table--> [ClientSource] (decrypts locally)
//	        | (Source interface)
//	    [Model] <- bubbletea event loop
//	        |
//	  [terminal output]
//
// Nothing is written to disk: entries live in process memory for the
// lifetime of the program and vanish with it.
package secretui
