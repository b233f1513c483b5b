// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretcmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// deleteParams holds the parameters for the delete command.
type deleteParams struct {
	cli.ClientParams
	Table string `json:"table" flag:"table" desc:"table name (default from config)"`
}

// DeleteCommand returns the "delete" command: remove a secret from a
// table.
func DeleteCommand() *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a secret from a table",
		Description: `Delete a secret by key. The server reports an error when the key does
not exist, so a successful delete always means the secret was there.`,
		Usage: "vaultapi delete <key> [flags]",
		Examples: []cli.Example{
			{
				Description: "Delete a secret from the default table",
				Command:     "vaultapi delete old_api_token",
			},
			{
				Description: "Delete from a specific table",
				Command:     "vaultapi delete db_password --table staging",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one key is required\n\nUsage: vaultapi delete <key> [flags]")
			}
			key := args[0]

			client, cfg, err := params.Connect(logger)
			if err != nil {
				return err
			}
			defer client.Close()

			table := params.Table
			if table == "" {
				table = cfg.Table
			}

			if err := client.DeleteSecret(ctx, table, key); err != nil {
				return cli.WrapClientError(err)
			}

			fmt.Fprintf(os.Stderr, "Deleted %s from table %s\n", key, table)
			return nil
		},
	}
}
