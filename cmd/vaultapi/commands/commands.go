// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package commands builds the complete vaultapi CLI command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/browsecmd"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/bundlecmd"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/doctorcmd"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/exportcmd"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/secretcmd"
	"github.com/thevickypedia/VaultAPI-Client/lib/version"
)

// Root builds and returns the complete vaultapi CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "vaultapi",
		Description: `vaultapi: client for VaultAPI secret servers.

Retrieve transit-encrypted secrets, decrypt them locally with
time-bucketed keys derived from your API credential, and hand them to
your shell, your CI, or another machine — without the plaintext ever
resting on disk unasked.`,
		Subcommands: []*cli.Command{
			cli.LoginCommand(),
			secretcmd.GetCommand(),
			secretcmd.TableCommand(),
			secretcmd.PutCommand(),
			secretcmd.DeleteCommand(),
			exportcmd.ExportCommand(),
			exportcmd.UnsealCommand(),
			bundlecmd.Command(),
			browsecmd.Command(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("vaultapi %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
