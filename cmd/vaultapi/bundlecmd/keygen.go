// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundlecmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/bundle"
)

// keygenParams holds the parameters for bundle keygen.
type keygenParams struct {
	Out string `json:"out" flag:"out" desc:"path for the new key file (required)"`
}

func keygenCommand() *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Create a new bundle key file",
		Description: `Create a bundle key file: 32 random bytes, hex-encoded, mode 0600.

Distribute the file to every machine that should open bundles made
with it — a CI secret, a configuration-management file, whatever
channel the fleet already trusts for key material. The command refuses
to overwrite an existing file, since a key file may be the only thing
that can open bundles already produced with it.`,
		Usage: "vaultapi bundle keygen --out <path>",
		Examples: []cli.Example{
			{
				Description: "Create a key file",
				Command:     "vaultapi bundle keygen --out ./bundle.key",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Out == "" {
				return cli.Validation("--out is required\n\nUsage: vaultapi bundle keygen --out <path>")
			}

			if err := bundle.GenerateKeyFile(params.Out); err != nil {
				if errors.Is(err, fs.ErrExist) {
					return cli.Conflict("%w", err).
						WithHint("Pick another path; existing key files are never overwritten.")
				}
				return cli.Internal("%w", err)
			}

			fmt.Fprintf(os.Stderr, "Wrote bundle key %s\n", params.Out)
			return nil
		},
	}
}
