// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
	"github.com/thevickypedia/VaultAPI-Client/lib/vaultapi"
)

// Entry is one secret in the browsed table: its key and its value
// exactly as stored, a single JSON document.
type Entry struct {
	// Key is the secret's name in the table.
	Key string

	// Raw is the value's exact JSON bytes as the server stored them.
	// Kept raw rather than decoded so the detail pane shows the
	// server's own formatting-relevant bytes (key order, number
	// representation) rather than a Go re-encoding.
	Raw json.RawMessage
}

// ValueKind classifies a secret's JSON value for the list's type tag.
type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	KindNull
	KindObject
	KindArray
)

// Label returns the short tag shown in the key list. All labels are at
// most four characters so the key column starts at a fixed offset.
func (kind ValueKind) Label() string {
	switch kind {
	case KindString:
		return "str"
	case KindNumber:
		return "num"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	case KindObject:
		return "obj"
	case KindArray:
		return "arr"
	default:
		return "?"
	}
}

// Kind classifies the entry's value by its leading JSON token. The
// bytes came out of a successful decrypt-and-parse, so the first
// non-space byte determines the type.
func (entry Entry) Kind() ValueKind {
	for _, b := range entry.Raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		case '"':
			return KindString
		case '{':
			return KindObject
		case '[':
			return KindArray
		case 't', 'f':
			return KindBool
		case 'n':
			return KindNull
		default:
			return KindNumber
		}
	}
	return KindNull
}

// Source provides the table snapshot for the browser. Fetch may block
// on the network; the model always calls it from a bubbletea command,
// never from Update.
type Source interface {
	// Table returns the table name shown in the header bar.
	Table() string

	// Fetch retrieves the current table contents, sorted by key.
	Fetch(ctx context.Context) ([]Entry, error)
}

// ClientSource fetches and decrypts a table through a vaultapi.Client.
// The client is borrowed, not owned: the command that built it closes
// it after the program exits.
type ClientSource struct {
	client *vaultapi.Client
	table  string
}

// NewClientSource creates a Source backed by a vault client.
func NewClientSource(client *vaultapi.Client, table string) *ClientSource {
	return &ClientSource{client: client, table: table}
}

// Table returns the browsed table's name.
func (source *ClientSource) Table() string { return source.table }

// Fetch retrieves the whole table and splits the decrypted object into
// per-key entries, preserving each value's exact bytes.
func (source *ClientSource) Fetch(ctx context.Context) ([]Entry, error) {
	value, err := source.client.GetTable(ctx, source.table)
	if err != nil {
		return nil, err
	}
	return entriesFromPayload(value)
}

// entriesFromPayload splits a decrypted table payload into sorted
// entries. Table fetches decrypt to a JSON object keyed by secret
// name; anything else means the server and client disagree about the
// endpoint's shape.
func entriesFromPayload(value *payload.Value) ([]Entry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value.Raw(), &fields); err != nil {
		return nil, fmt.Errorf("table payload is not an object: %w", err)
	}

	entries := make([]Entry, 0, len(fields))
	for key, raw := range fields {
		entries = append(entries, Entry{Key: key, Raw: raw})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}
