// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretcmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// tableParams holds the parameters for the table command.
type tableParams struct {
	cli.ClientParams
	outputParams
}

// TableCommand returns the "table" command: fetch and decrypt an entire
// table of secrets.
func TableCommand() *cli.Command {
	var params tableParams

	return &cli.Command{
		Name:    "table",
		Summary: "Fetch and decrypt a whole table",
		Description: `Fetch every secret in a table and print the decrypted object.

The table name comes from the first argument, or from the config file
when omitted. Output formats match "vaultapi get": json (default, with
optional --pretty highlighting), env, and raw.`,
		Usage: "vaultapi table [name] [flags]",
		Examples: []cli.Example{
			{
				Description: "Fetch the default table",
				Command:     "vaultapi table",
			},
			{
				Description: "Load a whole table into the shell",
				Command:     "eval \"$(vaultapi table production --output env)\"",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}

			client, cfg, err := params.Connect(logger)
			if err != nil {
				return err
			}
			defer client.Close()

			table := cfg.Table
			if len(args) == 1 {
				table = args[0]
			}

			value, err := client.GetTable(ctx, table)
			if err != nil {
				return cli.WrapClientError(err)
			}

			return params.render(os.Stdout, value)
		},
	}
}
