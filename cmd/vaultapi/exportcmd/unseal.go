// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package exportcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/sealed"
)

// unsealParams holds the parameters for the unseal command.
type unsealParams struct {
	Identity string `json:"identity" flag:"identity" desc:"path to the age identity file"`
	Out      string `json:"out"      flag:"out"      desc:"write plaintext to this file (mode 0600) instead of stdout"`
	Generate string `json:"generate" flag:"generate" desc:"generate a new identity file at this path and print its recipient"`
}

// UnsealCommand returns the "unseal" command: the receiving side of
// "export --seal-to".
func UnsealCommand() *cli.Command {
	var params unsealParams

	return &cli.Command{
		Name:    "unseal",
		Summary: "Decrypt a sealed export",
		Description: `Decrypt a file produced by "vaultapi export --seal-to" using an age
identity. The sealed file travels over any channel — mail, chat, a
shared drive — and only the identity holder can open it.

The receiver owns the identity, so the receiver also creates it:

  vaultapi unseal --generate ~/.config/vaultapi/identity

writes the identity file (mode 0600) and prints the matching age1...
recipient. Hand that recipient to whoever runs export; it is public.

A file argument of "-" reads the sealed input from stdin.`,
		Usage: "vaultapi unseal <file> --identity <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Create an identity and print the recipient to share",
				Command:     "vaultapi unseal --generate ~/.config/vaultapi/identity",
			},
			{
				Description: "Decrypt a sealed export into the shell",
				Command:     "eval \"$(vaultapi unseal handoff.age --identity ~/.config/vaultapi/identity)\"",
			},
			{
				Description: "Decrypt from a pipe",
				Command:     "curl -s https://ci.internal/handoff.age | vaultapi unseal - --identity ./identity",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if params.Generate != "" {
				if len(args) > 0 {
					return cli.Validation("unexpected argument with --generate: %s", args[0])
				}
				return generateIdentity(params.Generate)
			}

			if len(args) != 1 {
				return cli.Validation("exactly one sealed file is required\n\nUsage: vaultapi unseal <file> --identity <path> [flags]")
			}
			if params.Identity == "" {
				return cli.Validation("--identity is required").
					WithHint("Create one with \"vaultapi unseal --generate <path>\".")
			}

			armored, err := readSealedInput(args[0])
			if err != nil {
				return err
			}

			identityKey, err := sealed.ReadIdentityFile(params.Identity)
			if err != nil {
				return cli.Validation("reading identity %s: %w", params.Identity, err)
			}
			defer identityKey.Close()

			plaintext, err := sealed.Decrypt(string(armored), identityKey)
			if err != nil {
				return cli.Internal("unsealing %s: %w", args[0], err).
					WithHint("Check that this identity matches a recipient the export was sealed to.")
			}
			defer plaintext.Close()

			if params.Out == "" {
				_, err := os.Stdout.Write(plaintext.Bytes())
				return err
			}
			if err := os.WriteFile(params.Out, plaintext.Bytes(), 0o600); err != nil {
				return cli.Internal("writing %s: %w", params.Out, err)
			}
			fmt.Fprintf(os.Stderr, "Unsealed to %s\n", params.Out)
			return nil
		},
	}
}

// generateIdentity creates a fresh age identity file and prints the
// recipient. The private half never crosses stdout.
func generateIdentity(path string) error {
	identity, err := sealed.GenerateIdentity()
	if err != nil {
		return cli.Internal("generating identity: %w", err)
	}
	defer identity.Close()

	if err := identity.WriteFile(path); err != nil {
		return cli.Internal("%w", err)
	}

	fmt.Fprintf(os.Stderr, "Wrote identity %s\n", path)
	fmt.Fprintln(os.Stdout, identity.Recipient)
	return nil
}

// readSealedInput reads the armored ciphertext from a file or, for
// "-", from stdin.
func readSealedInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, cli.Validation("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, cli.Validation("reading %s: %w", path, err)
	}
	return data, nil
}
