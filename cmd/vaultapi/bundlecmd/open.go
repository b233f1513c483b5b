// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundlecmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/bundle"
)

// openParams holds the parameters for bundle open.
type openParams struct {
	Key string `json:"key" flag:"key" desc:"path to the bundle key file (required)"`
	Out string `json:"out" flag:"out" desc:"write the payload to this file (mode 0600) instead of stdout"`
}

func openCommand() *cli.Command {
	var params openParams

	return &cli.Command{
		Name:    "open",
		Summary: "Decrypt a bundle",
		Description: `Decrypt a bundle with its key file and print the payload.

The payload is whatever "vaultapi export --bundle" rendered — shell
export lines or a JSON object, per the export's --format. Decryption
verifies the header: a bundle whose header was modified after writing
fails here even though it inspects cleanly.`,
		Usage: "vaultapi bundle open <file> --key <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Load bundle secrets into the current shell",
				Command:     "eval \"$(vaultapi bundle open secrets.vbun --key ./bundle.key)\"",
			},
			{
				Description: "Write the payload to a file only this user can read",
				Command:     "vaultapi bundle open secrets.vbun --key ./bundle.key --out secrets.env",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one bundle file is required\n\nUsage: vaultapi bundle open <file> --key <path> [flags]")
			}
			if params.Key == "" {
				return cli.Validation("--key is required\n\nUsage: vaultapi bundle open <file> --key <path> [flags]")
			}

			header, payload, err := bundle.Read(args[0], params.Key)
			if err != nil {
				return cli.Internal("%w", err).
					WithHint("Check that the key file matches the one the bundle was written with.")
			}
			defer payload.Close()

			if params.Out == "" {
				_, err := os.Stdout.Write(payload.Bytes())
				return err
			}
			if err := os.WriteFile(params.Out, payload.Bytes(), 0o600); err != nil {
				return cli.Internal("writing %s: %w", params.Out, err)
			}
			fmt.Fprintf(os.Stderr, "Opened bundle: %d secret(s) to %s\n", header.EntryCount, params.Out)
			return nil
		},
	}
}
