// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// PrintChecklist prints check results as a human-readable checklist and
// returns an ExitError when any check failed. Warnings and skips are
// listed but do not affect the exit code.
func PrintChecklist(w io.Writer, results []Result) error {
	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-5s]  %-40s  %s\n", prefix, result.Name, result.Message)
	}

	fmt.Fprintln(w)

	if AnyFailed(results) {
		fmt.Fprintln(w, "Some checks failed.")
		return &cli.ExitError{Code: 1}
	}

	fmt.Fprintln(w, "All checks passed.")
	return nil
}
