// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// PromptSecret reads a secret interactively from the terminal with
// echo disabled. label is printed (on stderr, so stdout stays
// script-clean) before reading. Fails when stdin is not a terminal —
// piped invocations must use --apikey-file or VAULTAPI_KEY instead.
func PromptSecret(label string) (*secret.Buffer, error) {
	stdinFileDescriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(stdinFileDescriptor) {
		return nil, Validation("no terminal available for interactive prompt (use --apikey-file or VAULTAPI_KEY)")
	}

	fmt.Fprint(os.Stderr, label+": ")
	secretBytes, err := term.ReadPassword(stdinFileDescriptor)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, Internal("reading input: %w", err)
	}
	if len(secretBytes) == 0 {
		return nil, Validation("empty input")
	}

	buffer, err := secret.NewFromBytes(secretBytes)
	if err != nil {
		secret.Zero(secretBytes)
		return nil, err
	}
	return buffer, nil
}
