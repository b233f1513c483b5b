// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretcmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/alecthomas/chroma/v2/quick"
	"golang.org/x/term"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
)

// Output formats for get and table. The zero value of the flag is
// formatJSON.
const (
	formatJSON = "json"
	formatEnv  = "env"
	formatRaw  = "raw"
)

// outputParams holds the output-shaping flags shared by get and table.
type outputParams struct {
	Output string `json:"output" flag:"output" default:"json" desc:"output format: json, env, or raw"`
	Pretty bool   `json:"pretty" flag:"pretty" desc:"syntax-highlight JSON output (terminal only)"`
}

// render writes the fetched payload to w in the requested format.
func (p *outputParams) render(w io.Writer, value *payload.Value) error {
	switch p.Output {
	case formatJSON, "":
		return renderJSON(w, value, p.Pretty)
	case formatEnv:
		return renderEnv(w, value)
	case formatRaw:
		return renderRaw(w, value)
	default:
		return cli.Validation("unknown output format %q (expected json, env, or raw)", p.Output)
	}
}

// renderJSON prints the payload as indented JSON, preserving the
// server's key order. With pretty set and stdout on a terminal, the
// output is syntax-highlighted; piped output stays plain so the bytes
// survive shell capture.
func renderJSON(w io.Writer, value *payload.Value, pretty bool) error {
	var indented bytes.Buffer
	if err := json.Indent(&indented, value.Raw(), "", "  "); err != nil {
		// The payload was accepted by the decrypt pipeline, so this
		// is unreachable for object payloads; scalars are already
		// valid JSON too.
		return fmt.Errorf("formatting payload: %w", err)
	}

	if pretty && isTerminal(w) {
		if err := quick.Highlight(w, indented.String(), "json", "terminal256", "monokai"); err != nil {
			// Fall back to plain output rather than failing the fetch.
			fmt.Fprintln(w, indented.String())
			return nil
		}
		fmt.Fprintln(w)
		return nil
	}

	_, err := fmt.Fprintln(w, indented.String())
	return err
}

// renderEnv prints the payload as shell export lines, one per
// top-level key, sorted by variable name. The output is safe to eval:
// values are single-quoted with embedded quotes escaped.
func renderEnv(w io.Writer, value *payload.Value) error {
	flattened, err := value.Flatten()
	if err != nil {
		return cli.Validation("payload cannot render as environment variables: %w", err)
	}

	names := make([]string, 0, len(flattened))
	for name := range flattened {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if _, err := fmt.Fprintf(w, "export %s=%s\n", name, cli.ShellQuote(flattened[name])); err != nil {
			return err
		}
	}
	return nil
}

// renderRaw writes the exact payload bytes the server stored, with a
// trailing newline added when missing.
func renderRaw(w io.Writer, value *payload.Value) error {
	raw := value.Raw()
	if _, err := w.Write(raw); err != nil {
		return err
	}
	if len(raw) == 0 || raw[len(raw)-1] != '\n' {
		_, err := io.WriteString(w, "\n")
		return err
	}
	return nil
}

// isTerminal reports whether w is a terminal. Only os.Stdout and
// os.Stderr can be; buffers and pipes never are.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
