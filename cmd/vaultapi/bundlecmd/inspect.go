// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundlecmd

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/bundle"
)

// inspectParams holds the parameters for bundle inspect.
type inspectParams struct {
	cli.JSONOutput
	Raw bool `json:"raw" flag:"raw" desc:"print the header as CBOR diagnostic notation"`
}

// bundleInfo is the JSON output shape for bundle inspect.
type bundleInfo struct {
	CreatedAt   string   `json:"created_at"   desc:"bundle creation time, RFC 3339"`
	Tables      []string `json:"tables"       desc:"tables the payload was exported from"`
	EntryCount  int      `json:"entry_count"  desc:"number of exported secrets"`
	Compression string   `json:"compression"  desc:"compression applied before encryption"`
	PayloadSize uint64   `json:"payload_size" desc:"uncompressed payload size in bytes"`
	Fingerprint string   `json:"fingerprint"  desc:"BLAKE3 hash of the uncompressed payload, hex"`
}

func inspectCommand() *cli.Command {
	var params inspectParams

	return &cli.Command{
		Name:    "inspect",
		Summary: "Show a bundle's header without the key",
		Description: `Print a bundle's header: creation time, source tables, entry count,
compression, payload size, and payload fingerprint. No key is needed —
the header is stored in the clear.

Nothing printed here is authenticated. The header is bound to the
ciphertext as associated data, so tampering is caught when the bundle
is opened, not when it is inspected.

--raw prints the header as CBOR diagnostic notation instead, which
also works on bundles written by a newer tool version whose header
fields this one does not know.`,
		Usage: "vaultapi bundle inspect <file> [flags]",
		Examples: []cli.Example{
			{
				Description: "Show what a bundle contains",
				Command:     "vaultapi bundle inspect secrets.vbun",
			},
			{
				Description: "Machine-readable header",
				Command:     "vaultapi bundle inspect secrets.vbun --json",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("exactly one bundle file is required\n\nUsage: vaultapi bundle inspect <file> [flags]")
			}
			path := args[0]

			if params.Raw {
				notation, err := bundle.InspectRaw(path)
				if err != nil {
					return cli.Validation("%w", err)
				}
				fmt.Fprintln(os.Stdout, notation)
				return nil
			}

			header, err := bundle.Inspect(path)
			if err != nil {
				return cli.Validation("%w", err)
			}

			info := bundleInfo{
				CreatedAt:   time.Unix(header.CreatedAt, 0).UTC().Format(time.RFC3339),
				Tables:      header.Tables,
				EntryCount:  header.EntryCount,
				Compression: header.Compression.String(),
				PayloadSize: header.PayloadSize,
				Fingerprint: hex.EncodeToString(header.Fingerprint),
			}

			if done, err := params.EmitJSON(info); done {
				return err
			}

			writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(writer, "created\t%s\n", info.CreatedAt)
			fmt.Fprintf(writer, "tables\t%s\n", strings.Join(info.Tables, ", "))
			fmt.Fprintf(writer, "entries\t%d\n", info.EntryCount)
			fmt.Fprintf(writer, "compression\t%s\n", info.Compression)
			fmt.Fprintf(writer, "payload size\t%d bytes\n", info.PayloadSize)
			fmt.Fprintf(writer, "fingerprint\t%s\n", info.Fingerprint)
			return writer.Flush()
		},
	}
}
