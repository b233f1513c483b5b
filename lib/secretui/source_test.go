// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"encoding/json"
	"testing"

	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
)

func TestEntriesFromPayload(t *testing.T) {
	value, err := payload.Parse([]byte(`{"zebra":"z","alpha":{"nested":1},"beta":42}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	entries, err := entriesFromPayload(value)
	if err != nil {
		t.Fatalf("entriesFromPayload: %v", err)
	}

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	// Sorted by key.
	wantKeys := []string{"alpha", "beta", "zebra"}
	for index, want := range wantKeys {
		if entries[index].Key != want {
			t.Errorf("entries[%d].Key = %q, want %q", index, entries[index].Key, want)
		}
	}

	// Raw bytes preserved per entry.
	if string(entries[1].Raw) != "42" {
		t.Errorf("beta raw = %q, want 42", entries[1].Raw)
	}
	if string(entries[2].Raw) != `"z"` {
		t.Errorf(`zebra raw = %q, want "z"`, entries[2].Raw)
	}
}

func TestEntriesFromPayloadRejectsNonObject(t *testing.T) {
	value, err := payload.Parse([]byte(`["a","b"]`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if _, err := entriesFromPayload(value); err == nil {
		t.Fatal("array payload should be rejected")
	}
}

func TestEntryKind(t *testing.T) {
	tests := []struct {
		raw   string
		want  ValueKind
		label string
	}{
		{`"hello"`, KindString, "str"},
		{`42`, KindNumber, "num"},
		{`-3.5`, KindNumber, "num"},
		{`true`, KindBool, "bool"},
		{`false`, KindBool, "bool"},
		{`null`, KindNull, "null"},
		{`{"a":1}`, KindObject, "obj"},
		{`[1,2]`, KindArray, "arr"},
		{"  {\n}", KindObject, "obj"}, // Leading whitespace is skipped.
	}

	for _, test := range tests {
		entry := Entry{Key: "k", Raw: json.RawMessage(test.raw)}
		if got := entry.Kind(); got != test.want {
			t.Errorf("Kind(%q) = %v, want %v", test.raw, got, test.want)
		}
		if got := test.want.Label(); got != test.label {
			t.Errorf("Label(%v) = %q, want %q", test.want, got, test.label)
		}
	}
}
