// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import "strings"

// ShellQuote wraps value in single quotes for POSIX shells, escaping
// embedded single quotes with the '\'' idiom. Output produced with it
// is safe to eval: no expansion, no word splitting.
func ShellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
