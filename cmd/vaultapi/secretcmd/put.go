// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// putParams holds the parameters for the put command.
type putParams struct {
	cli.ClientParams
	Table    string   `json:"table"     flag:"table"     desc:"table name (default from config)"`
	FromFile []string `json:"from_file" flag:"from-file" desc:"read a value from a file: key=path (\"-\" for stdin, at most once)"`
}

// PutCommand returns the "put" command: store secrets in a table.
func PutCommand() *cli.Command {
	var params putParams

	return &cli.Command{
		Name:    "put",
		Summary: "Store secrets in a table",
		Description: `Store one or more secrets. Values come from key=value arguments, or
from files via --from-file key=path. A path of "-" reads the value from
stdin, which keeps it out of shell history and process listings.

The server stores values as given; on the way back out they travel
transit-encrypted and "vaultapi get" decrypts them locally. Values that
are themselves JSON objects are returned as objects by get.`,
		Usage: "vaultapi put <key>=<value> [key=value...] [flags]",
		Examples: []cli.Example{
			{
				Description: "Store two secrets",
				Command:     "vaultapi put db_user=app db_host=10.0.0.5 --table production",
			},
			{
				Description: "Store a value from a file",
				Command:     "vaultapi put --from-file tls_key=./server.key",
			},
			{
				Description: "Store a value from stdin",
				Command:     "openssl rand -hex 32 | vaultapi put --from-file api_token=-",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			secrets, err := collectSecrets(args, params.FromFile, os.Stdin)
			if err != nil {
				return err
			}
			if len(secrets) == 0 {
				return cli.Validation("nothing to store\n\nUsage: vaultapi put <key>=<value> [key=value...] [flags]")
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

			if err := client.PutSecrets(ctx, table, secrets); err != nil {
				return cli.WrapClientError(err)
			}

			names := make([]string, 0, len(secrets))
			for name := range secrets {
				names = append(names, name)
			}
			sort.Strings(names)
			fmt.Fprintf(os.Stderr, "Stored %d secret(s) in table %s: %s\n",
				len(names), table, strings.Join(names, ", "))
			return nil
		},
	}
}

// collectSecrets builds the key→value map from positional key=value
// arguments and --from-file key=path entries. Duplicate keys across
// either source are an error, as is more than one stdin read.
func collectSecrets(args, fromFile []string, stdin io.Reader) (map[string]string, error) {
	secrets := make(map[string]string, len(args)+len(fromFile))

	add := func(key, value string) error {
		if key == "" {
			return cli.Validation("empty secret key")
		}
		if _, exists := secrets[key]; exists {
			return cli.Validation("duplicate key %q", key)
		}
		secrets[key] = value
		return nil
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, cli.Validation("argument %q is not key=value", arg)
		}
		if err := add(key, value); err != nil {
			return nil, err
		}
	}

	stdinUsed := false
	for _, entry := range fromFile {
		key, path, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, cli.Validation("--from-file %q is not key=path", entry)
		}

		var value []byte
		var err error
		if path == "-" {
			if stdinUsed {
				return nil, cli.Validation("stdin can supply at most one value")
			}
			stdinUsed = true
			value, err = io.ReadAll(stdin)
		} else {
			value, err = os.ReadFile(path)
		}
		if err != nil {
			return nil, cli.Validation("reading value for %s: %w", key, err)
		}

		// A trailing newline is an artifact of editors and echo, not
		// part of the secret.
		if err := add(key, strings.TrimRight(string(value), "\r\n")); err != nil {
			return nil, err
		}
	}

	return secrets, nil
}
