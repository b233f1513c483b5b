// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"sort"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Slab dimensions for fzf's scratch allocator, sized the way fzf
// itself sizes them. One slab serves a whole filter pass; passing nil
// makes the matcher allocate per call, which is fine for tests.
const (
	slab16Size = 100 * 1024
	slab32Size = 2048
)

func init() {
	// fzf builds its character-class and bonus tables in Init; the
	// "default" scheme is what fzf uses for generic (non-path) text.
	algo.Init("default")
}

// FuzzyResult holds the outcome of a fuzzy match: the fzf score
// (higher is better, 0 means no match) and the rune positions in the
// text that matched the pattern, sorted ascending for highlighting.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// FuzzyMatch runs fzf's FuzzyMatchV2 algorithm against a single text.
// Matching is case-insensitive: the pattern is lowercased here and the
// algorithm folds the text side. The slab may be nil; reuse one across
// a batch of calls to avoid per-call allocation.
func FuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 || text == "" {
		return FuzzyResult{}
	}

	lowered := make([]rune, len(pattern))
	for index, r := range pattern {
		lowered[index] = unicode.ToLower(r)
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 {
		return FuzzyResult{}
	}

	match := FuzzyResult{Score: result.Score}
	if positions != nil {
		// fzf reports positions in backtrace order (descending).
		match.Positions = *positions
		sort.Ints(match.Positions)
	}
	return match
}
