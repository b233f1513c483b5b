// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package bundlecmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/bundle"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	original := os.Stdout
	reader, writer, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = writer

	fn()

	writer.Close()
	os.Stdout = original

	var buffer bytes.Buffer
	io.Copy(&buffer, reader)
	reader.Close()

	return buffer.String()
}

func TestKeygenInspectOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	keyPath := filepath.Join(dir, "bundle.key")
	ctx := context.Background()

	if err := keygenCommand().Execute(ctx, []string{"--out", keyPath}, testLogger()); err != nil {
		t.Fatalf("keygen: %v", err)
	}
	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("key file mode = %o, want 0600", info.Mode().Perm())
	}

	bundlePath := filepath.Join(dir, "secrets.vbun")
	payload := []byte("export API_TOKEN='abc123'\n")
	meta := bundle.Meta{Tables: []string{"production"}, EntryCount: 1}
	if err := bundle.Write(bundlePath, payload, meta, keyPath); err != nil {
		t.Fatalf("bundle.Write: %v", err)
	}

	output := captureStdout(t, func() {
		if err := inspectCommand().Execute(ctx, []string{bundlePath, "--json"}, testLogger()); err != nil {
			t.Errorf("inspect: %v", err)
		}
	})

	var parsed bundleInfo
	if err := json.Unmarshal([]byte(output), &parsed); err != nil {
		t.Fatalf("inspect --json output is not JSON: %v\n%s", err, output)
	}
	if parsed.EntryCount != 1 {
		t.Errorf("entry count = %d, want 1", parsed.EntryCount)
	}
	if len(parsed.Tables) != 1 || parsed.Tables[0] != "production" {
		t.Errorf("tables = %v", parsed.Tables)
	}
	if len(parsed.Fingerprint) != 64 {
		t.Errorf("fingerprint %q is not a full hex digest", parsed.Fingerprint)
	}

	outPath := filepath.Join(dir, "opened.env")
	if err := openCommand().Execute(ctx, []string{bundlePath, "--key", keyPath, "--out", outPath}, testLogger()); err != nil {
		t.Fatalf("open: %v", err)
	}
	opened, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("reading opened payload: %v", err)
	}
	if !bytes.Equal(opened, payload) {
		t.Errorf("payload = %q, want %q", opened, payload)
	}
	outInfo, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if outInfo.Mode().Perm() != 0o600 {
		t.Errorf("output mode = %o, want 0600", outInfo.Mode().Perm())
	}
}

func TestKeygenRefusesOverwrite(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "bundle.key")
	ctx := context.Background()

	if err := keygenCommand().Execute(ctx, []string{"--out", keyPath}, testLogger()); err != nil {
		t.Fatalf("first keygen: %v", err)
	}

	err := keygenCommand().Execute(ctx, []string{"--out", keyPath}, testLogger())
	var tool *cli.ToolError
	if !errors.As(err, &tool) {
		t.Fatalf("error = %v, want *cli.ToolError", err)
	}
	if tool.Category != cli.CategoryConflict {
		t.Errorf("category = %s, want conflict", tool.Category)
	}
}

func TestOpenWrongKey(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	rightKey := filepath.Join(dir, "right.key")
	wrongKey := filepath.Join(dir, "wrong.key")
	for _, path := range []string{rightKey, wrongKey} {
		if err := bundle.GenerateKeyFile(path); err != nil {
			t.Fatal(err)
		}
	}

	bundlePath := filepath.Join(dir, "secrets.vbun")
	if err := bundle.Write(bundlePath, []byte("payload"), bundle.Meta{EntryCount: 1}, rightKey); err != nil {
		t.Fatal(err)
	}

	err := openCommand().Execute(ctx, []string{bundlePath, "--key", wrongKey}, testLogger())
	if err == nil {
		t.Fatal("open with the wrong key succeeded")
	}
}
