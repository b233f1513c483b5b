// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package exportcmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

func TestReadSealedInputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handoff.age")
	if err := os.WriteFile(path, []byte("armored-bytes"), 0o600); err != nil {
		t.Fatal(err)
	}

	data, err := readSealedInput(path)
	if err != nil {
		t.Fatalf("readSealedInput: %v", err)
	}
	if string(data) != "armored-bytes" {
		t.Errorf("data = %q", data)
	}
}

func TestReadSealedInputMissingFile(t *testing.T) {
	_, err := readSealedInput(filepath.Join(t.TempDir(), "absent.age"))

	var tool *cli.ToolError
	if !errors.As(err, &tool) {
		t.Fatalf("error = %v, want *cli.ToolError", err)
	}
	if tool.Category != cli.CategoryValidation {
		t.Errorf("category = %s, want validation", tool.Category)
	}
}
