// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"sort"
	"testing"
)

func TestFuzzyMatchBasic(t *testing.T) {
	result := FuzzyMatch("database_password", []rune("pass"), nil)
	if result.Score <= 0 {
		t.Fatal("expected positive score for substring match")
	}
	if len(result.Positions) == 0 {
		t.Fatal("expected non-empty match positions")
	}
}

func TestFuzzyMatchNonContiguous(t *testing.T) {
	// "dbp" should match "db_password" — d and b from db, p from
	// password.
	result := FuzzyMatch("db_password", []rune("dbp"), nil)
	if result.Score <= 0 {
		t.Fatal("expected positive score for non-contiguous fuzzy match")
	}
}

func TestFuzzyMatchNoMatch(t *testing.T) {
	result := FuzzyMatch("api_token", []rune("xyz"), nil)
	if result.Score != 0 {
		t.Errorf("expected zero score for no match, got %d", result.Score)
	}
	if len(result.Positions) != 0 {
		t.Errorf("expected empty positions for no match, got %v", result.Positions)
	}
}

func TestFuzzyMatchCaseInsensitive(t *testing.T) {
	// Pattern is lowercase, text has uppercase. The wrapper lowercases
	// the pattern and matches case-insensitively, so this should match.
	result := FuzzyMatch("Db_Password", []rune("dbp"), nil)
	if result.Score <= 0 {
		t.Fatalf("expected case-insensitive match, got score=%d", result.Score)
	}
}

func TestFuzzyMatchCaseInsensitiveAllCaps(t *testing.T) {
	result := FuzzyMatch("TLS_ENABLED", []rune("tls"), nil)
	if result.Score <= 0 {
		t.Fatalf("expected match for 'tls' in 'TLS_ENABLED', got score=%d", result.Score)
	}
}

func TestFuzzyMatchUppercasePattern(t *testing.T) {
	// The pattern itself is lowercased before matching, so an uppercase
	// query still hits lowercase text.
	result := FuzzyMatch("db_password", []rune("DBP"), nil)
	if result.Score <= 0 {
		t.Fatalf("expected uppercase pattern to match lowercase text, got score=%d", result.Score)
	}
}

func TestFuzzyMatchEmptyPattern(t *testing.T) {
	result := FuzzyMatch("anything", []rune{}, nil)
	if result.Score != 0 {
		t.Errorf("expected zero score for empty pattern, got %d", result.Score)
	}
}

func TestFuzzyMatchEmptyText(t *testing.T) {
	result := FuzzyMatch("", []rune("x"), nil)
	if result.Score != 0 {
		t.Errorf("expected zero score for empty text, got %d", result.Score)
	}
}

func TestFuzzyMatchPositionsSorted(t *testing.T) {
	// fzf reports positions in backtrace order; the wrapper sorts them
	// ascending so highlight renderers can scan left to right.
	result := FuzzyMatch("smtp_settings", []rune("sts"), nil)
	if result.Score <= 0 {
		t.Fatal("expected a match")
	}
	if !sort.IntsAreSorted(result.Positions) {
		t.Errorf("positions should be sorted ascending, got %v", result.Positions)
	}
	for _, position := range result.Positions {
		if position < 0 || position >= len("smtp_settings") {
			t.Errorf("position %d out of bounds", position)
		}
	}
}
