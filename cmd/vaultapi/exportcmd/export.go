// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package exportcmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/bundle"
	"github.com/thevickypedia/VaultAPI-Client/lib/manifest"
	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
	"github.com/thevickypedia/VaultAPI-Client/lib/sealed"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// exportParams holds the parameters for the export command.
type exportParams struct {
	cli.ClientParams
	Manifest  string   `json:"manifest"   flag:"manifest"   desc:"path to the export manifest (JSONC)"`
	Format    string   `json:"format"     flag:"format"     default:"env" desc:"output format: env or json"`
	Out       string   `json:"out"        flag:"out"        desc:"write to this file (mode 0600) instead of stdout"`
	SealTo    []string `json:"seal_to"    flag:"seal-to"    desc:"age recipient to seal the output to (repeatable)"`
	Bundle    string   `json:"bundle"     flag:"bundle"     desc:"write an encrypted bundle to this path instead of plain output"`
	BundleKey string   `json:"bundle_key" flag:"bundle-key" desc:"bundle key file (create one with \"vaultapi bundle keygen\")"`
}

// ExportCommand returns the "export" command: manifest-driven batch
// fetch with env/json rendering and optional sealing.
func ExportCommand() *cli.Command {
	var params exportParams

	return &cli.Command{
		Name:    "export",
		Summary: "Batch-fetch secrets listed in a manifest",
		Description: `Fetch every secret named in a manifest file and render them as shell
exports or JSON. The manifest is JSONC (JSON with comments), so it can
live in the repository and document why each secret is needed:

  {
    "version": 1,
    "table": "production",
    "entries": [
      {"key": "db_password", "env": "DB_PASSWORD"},
      {"key": "api_token"},  // env name derived from the key
    ],
  }

Entries are grouped by table and fetched one batch request per table.

By default the rendered output goes to stdout (or --out, written with
mode 0600). Two encrypted destinations replace plain output:

  --seal-to age1...           age-encrypt to one or more recipients;
                              the receiver runs "vaultapi unseal"
  --bundle path --bundle-key  write a symmetric encrypted bundle for
                              machines sharing a key file

The summary on stderr names tables, keys, and value fingerprints —
never the values themselves.`,
		Usage: "vaultapi export --manifest <path> [flags]",
		Examples: []cli.Example{
			{
				Description: "Load manifest secrets into the current shell",
				Command:     "eval \"$(vaultapi export --manifest ./secrets.jsonc)\"",
			},
			{
				Description: "Write a sealed export for another operator",
				Command:     "vaultapi export --manifest ./secrets.jsonc --seal-to age1xy... --out handoff.age",
			},
			{
				Description: "Produce an encrypted bundle for CI",
				Command:     "vaultapi export --manifest ./secrets.jsonc --bundle secrets.vbun --bundle-key ./bundle.key",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if err := params.validateFlags(); err != nil {
				return err
			}

			m, err := manifest.ReadFile(params.Manifest)
			if err != nil {
				return cli.Validation("%w", err)
			}
			if issues := manifest.Validate(m); len(issues) > 0 {
				return cli.Validation("manifest %s has %d issue(s):\n  %s",
					params.Manifest, len(issues), strings.Join(issues, "\n  "))
			}

			client, _, err := params.Connect(logger)
			if err != nil {
				return err
			}
			defer client.Close()

			fetched := make(map[string]map[string]any)
			for _, group := range m.GroupByTable() {
				value, fetchErr := client.GetSecrets(ctx, group.Table, group.Keys)
				if fetchErr != nil {
					return cli.WrapClientError(fetchErr)
				}
				object, ok := value.Map()
				if !ok {
					return cli.Internal("table %s: batch response is not an object", group.Table)
				}
				fetched[group.Table] = object
			}

			document, entries, err := buildDocument(m, fetched, params.Format)
			if err != nil {
				return err
			}
			defer secret.Zero(document)

			if err := params.deliver(document, entries); err != nil {
				return err
			}

			writeSummary(os.Stderr, entries)
			return nil
		},
	}
}

// validateFlags checks the flag combinations that cannot be expressed
// in tags: a manifest is required, and the three destinations (plain,
// sealed, bundle) are mutually exclusive.
func (p *exportParams) validateFlags() error {
	if p.Manifest == "" {
		return cli.Validation("--manifest is required\n\nUsage: vaultapi export --manifest <path> [flags]")
	}
	switch p.Format {
	case formatEnv, formatJSON:
	default:
		return cli.Validation("unknown format %q (expected env or json)", p.Format)
	}
	if p.Bundle != "" && len(p.SealTo) > 0 {
		return cli.Validation("--bundle and --seal-to are mutually exclusive")
	}
	if p.Bundle != "" && p.Out != "" {
		return cli.Validation("--bundle names its own output path; --out does not apply")
	}
	if p.Bundle != "" && p.BundleKey == "" {
		return cli.Validation("--bundle requires --bundle-key").
			WithHint("Create a key file with \"vaultapi bundle keygen --out bundle.key\".")
	}
	if p.BundleKey != "" && p.Bundle == "" {
		return cli.Validation("--bundle-key requires --bundle")
	}
	for _, recipient := range p.SealTo {
		if err := sealed.ParseRecipient(recipient); err != nil {
			return cli.Validation("--seal-to %s: %w", recipient, err)
		}
	}
	return nil
}

// deliver routes the rendered document to its destination: an
// encrypted bundle, a sealed age file, or plain bytes on --out/stdout.
func (p *exportParams) deliver(document []byte, entries []exportedEntry) error {
	switch {
	case p.Bundle != "":
		meta := bundle.Meta{Tables: entryTables(entries), EntryCount: len(entries)}
		if err := bundle.Write(p.Bundle, document, meta, p.BundleKey); err != nil {
			return cli.Internal("writing bundle: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Wrote bundle %s (fingerprint %s)\n",
			p.Bundle, payload.Fingerprint(document))
		return nil

	case len(p.SealTo) > 0:
		armored, err := sealed.Encrypt(document, p.SealTo)
		if err != nil {
			return cli.Internal("sealing export: %w", err)
		}
		if err := p.writeOut([]byte(armored + "\n")); err != nil {
			return err
		}
		if p.Out != "" {
			fmt.Fprintf(os.Stderr, "Wrote sealed export %s for %d recipient(s)\n",
				p.Out, len(p.SealTo))
		}
		return nil

	default:
		return p.writeOut(document)
	}
}

// writeOut writes data to --out with owner-only permissions, or to
// stdout when no path was given.
func (p *exportParams) writeOut(data []byte) error {
	if p.Out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(p.Out, data, 0o600); err != nil {
		return cli.Internal("writing %s: %w", p.Out, err)
	}
	return nil
}

// exportedEntry records one exported secret for the summary: where it
// came from, the variable it became, and a fingerprint of its rendered
// value. The value itself is not retained here.
type exportedEntry struct {
	Env         string
	Table       string
	Key         string
	Fingerprint string
}

// buildDocument renders the fetched secrets into the output document,
// walking manifest entries in author order. Every entry must be
// present in the fetched responses; missing keys are reported together
// rather than one at a time.
func buildDocument(m *manifest.Manifest, fetched map[string]map[string]any, format string) ([]byte, []exportedEntry, error) {
	var missing []string
	entries := make([]exportedEntry, 0, len(m.Entries))
	jsonDocument := make(map[string]any, len(m.Entries))
	var envDocument strings.Builder

	for _, entry := range m.Entries {
		table := entry.ResolvedTable(m.Table)
		value, ok := fetched[table][entry.Key]
		if !ok {
			missing = append(missing, table+"/"+entry.Key)
			continue
		}

		env, err := entry.ResolvedEnv()
		if err != nil {
			// Validate catches this before any fetch; kept for safety.
			return nil, nil, cli.Validation("entry %q: %w", entry.Key, err)
		}

		rendered, err := payload.RenderScalar(value)
		if err != nil {
			return nil, nil, cli.Internal("entry %s/%s: %w", table, entry.Key, err)
		}

		switch format {
		case formatEnv:
			fmt.Fprintf(&envDocument, "export %s=%s\n", env, cli.ShellQuote(rendered))
		case formatJSON:
			jsonDocument[env] = value
		}

		entries = append(entries, exportedEntry{
			Env:         env,
			Table:       table,
			Key:         entry.Key,
			Fingerprint: payload.Fingerprint([]byte(rendered)),
		})
	}

	if len(missing) > 0 {
		return nil, nil, cli.NotFound("server response is missing %d secret(s): %s",
			len(missing), strings.Join(missing, ", "))
	}

	switch format {
	case formatEnv:
		return []byte(envDocument.String()), entries, nil
	case formatJSON:
		document, err := json.MarshalIndent(jsonDocument, "", "  ")
		if err != nil {
			return nil, nil, cli.Internal("encoding export: %w", err)
		}
		return append(document, '\n'), entries, nil
	default:
		return nil, nil, cli.Validation("unknown format %q (expected env or json)", format)
	}
}

const (
	formatEnv  = "env"
	formatJSON = "json"
)

// entryTables returns the sorted set of tables the entries came from.
func entryTables(entries []exportedEntry) []string {
	seen := make(map[string]bool, len(entries))
	var tables []string
	for _, entry := range entries {
		if !seen[entry.Table] {
			seen[entry.Table] = true
			tables = append(tables, entry.Table)
		}
	}
	sort.Strings(tables)
	return tables
}

// writeSummary prints the per-table export summary. Keys and
// fingerprints only — values never appear on stderr.
func writeSummary(w io.Writer, entries []exportedEntry) {
	fmt.Fprintf(w, "Exported %d secret(s) from %d table(s)\n", len(entries), len(entryTables(entries)))

	byTable := make(map[string][]exportedEntry)
	for _, entry := range entries {
		byTable[entry.Table] = append(byTable[entry.Table], entry)
	}
	for _, table := range entryTables(entries) {
		fmt.Fprintf(w, "  table %s:\n", table)
		for _, entry := range byTable[table] {
			fmt.Fprintf(w, "    %-30s %s (fingerprint %s)\n", entry.Env, entry.Key, entry.Fingerprint)
		}
	}
}
