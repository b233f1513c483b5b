// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretcmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
)

// getParams holds the parameters for the get command.
type getParams struct {
	cli.ClientParams
	outputParams
	Table string `json:"table" flag:"table" desc:"table name (default from config)"`
}

// GetCommand returns the "get" command: fetch and decrypt one or more
// secrets from a table.
func GetCommand() *cli.Command {
	var params getParams

	return &cli.Command{
		Name:    "get",
		Summary: "Fetch and decrypt secrets",
		Description: `Fetch one or more secrets from a table and print the decrypted values.

With a single key, the server returns that secret's value. With several
keys, the server returns an object mapping each key to its value. Either
way the response is a transit-encrypted envelope; the value printed here
was decrypted locally with a key derived from your API credential — the
plaintext never crossed the network.

Output formats:
  json   indented JSON (default); --pretty adds syntax highlighting
         when stdout is a terminal
  env    shell export lines, one per top-level key, safe to eval
  raw    the exact payload bytes the server stored`,
		Usage: "vaultapi get <key> [key...] [flags]",
		Examples: []cli.Example{
			{
				Description: "Fetch a single secret",
				Command:     "vaultapi get database_password",
			},
			{
				Description: "Fetch several secrets from a specific table",
				Command:     "vaultapi get db_user db_password --table production",
			},
			{
				Description: "Load a secret into the shell",
				Command:     "eval \"$(vaultapi get database_password --output env)\"",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("at least one key is required\n\nUsage: vaultapi get <key> [key...] [flags]")
			}

			client, cfg, err := params.Connect(logger)
			if err != nil {
				return err
			}
			defer client.Close()

			table := params.Table
			if table == "" {
				table = cfg.Table
			}

			var value *payload.Value
			if len(args) == 1 {
				value, err = client.GetSecret(ctx, table, args[0])
			} else {
				value, err = client.GetSecrets(ctx, table, args)
			}
			if err != nil {
				return cli.WrapClientError(err)
			}

			return params.render(os.Stdout, value)
		},
	}
}
