// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundlecmd

import (
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// Command returns the "bundle" parent command with all subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "bundle",
		Summary: "Manage encrypted export bundles",
		Description: `Create keys for, inspect, and open encrypted export bundles.

A bundle is the machine-to-machine counterpart of a sealed export: a
single file produced by "vaultapi export --bundle", encrypted with a
shared key file instead of per-recipient age keys. CI runners and
fleets that already share a provisioning channel for one key file can
receive arbitrary exports through it.

The bundle header (creation time, source tables, entry count, payload
fingerprint) is readable without the key and tamper-evident: it is
bound to the ciphertext, so a modified header makes decryption fail.`,
		Subcommands: []*cli.Command{
			keygenCommand(),
			inspectCommand(),
			openCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create a key file for a CI fleet",
				Command:     "vaultapi bundle keygen --out ./bundle.key",
			},
			{
				Description: "See what a bundle contains without the key",
				Command:     "vaultapi bundle inspect secrets.vbun",
			},
			{
				Description: "Decrypt a bundle into the shell",
				Command:     "eval \"$(vaultapi bundle open secrets.vbun --key ./bundle.key)\"",
			},
		},
	}
}
