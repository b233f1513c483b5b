// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package manifest provides parsing and validation for export
// manifests: the file that tells "vaultapi export" which secrets to
// fetch and what environment names to give them.
//
// Manifests are authored as JSONC (JSON extended with // line
// comments, /* block comments */, and trailing commas), so a checked-in
// manifest can document why each secret is needed:
//
//	{
//	  "version": 1,
//	  "table": "production",      // default table for entries
//	  "entries": [
//	    {"key": "db_password", "env": "DB_PASSWORD"},
//	    {"key": "api_token"},     // env name derived from the key
//	    {"table": "shared", "key": "smtp_url", "env": "SMTP_URL"},
//	  ],
//	}
//
// The typical flow:
//
//  1. ReadFile or Parse: JSONC bytes → Manifest
//  2. Validate: structural checks (version, keys, env name collisions)
//  3. GroupByTable: per-table fetch batches, one get-secrets call each
package manifest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
)

// Version is the manifest schema version this package understands.
const Version = 1

// Manifest describes a batch of secrets and their destination
// environment variable names.
type Manifest struct {
	// Version is the schema version; must be 1.
	Version int `json:"version"`

	// Table is the default table for entries that set none.
	Table string `json:"table"`

	// Entries name the secrets to fetch.
	Entries []Entry `json:"entries"`
}

// Entry names one secret and, optionally, the environment variable it
// becomes and the table it lives in.
type Entry struct {
	// Key is the secret's name in its table.
	Key string `json:"key"`

	// Env is the environment variable name. Empty means derive one
	// from the key (uppercased, non-identifier characters replaced).
	Env string `json:"env,omitempty"`

	// Table overrides the manifest's default table for this entry.
	Table string `json:"table,omitempty"`
}

// ResolvedEnv returns the environment variable name for the entry:
// the explicit env field when set, otherwise a name derived from the
// key.
func (e Entry) ResolvedEnv() (string, error) {
	if e.Env != "" {
		return e.Env, nil
	}
	return payload.EnvName(e.Key)
}

// ResolvedTable returns the table for the entry: its own table field
// when set, otherwise the manifest default.
func (e Entry) ResolvedTable(defaultTable string) string {
	if e.Table != "" {
		return e.Table
	}
	return defaultTable
}

// Parse strips JSONC comments and trailing commas from data, then
// unmarshals the result into a Manifest.
func Parse(data []byte) (*Manifest, error) {
	stripped := jsonc.ToJSON(data)

	var manifest Manifest
	if err := json.Unmarshal(stripped, &manifest); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	return &manifest, nil
}

// ReadFile reads a JSONC manifest file from disk and parses it.
func ReadFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	manifest, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return manifest, nil
}
