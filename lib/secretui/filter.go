// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"sort"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/junegunn/fzf/src/util"
)

// ScoredEntry pairs an entry with its fuzzy match score and the key
// rune positions that matched, for highlight rendering in the list.
type ScoredEntry struct {
	Entry        Entry
	Score        int
	KeyPositions []int
}

// FilterModel is the fuzzy key filter. The text entry is a bubbles
// textinput; fzf's FuzzyMatchV2 does the matching. The filter narrows
// the fetched snapshot client-side without round-tripping to the
// server.
type FilterModel struct {
	// Input is the text entry widget. Focused while the user types a
	// query; blurred once the query is confirmed with enter.
	Input textinput.Model

	// Active is true when the filter input has keyboard focus
	// (the user pressed / to start typing).
	Active bool
}

// NewFilterModel creates an inactive filter with an empty query.
func NewFilterModel() FilterModel {
	input := textinput.New()
	input.Prompt = " / "
	input.Placeholder = "filter keys"
	input.CharLimit = 128
	return FilterModel{Input: input}
}

// Query returns the current filter text.
func (filter *FilterModel) Query() string {
	return filter.Input.Value()
}

// Activate gives the input keyboard focus. The returned command drives
// the input's cursor.
func (filter *FilterModel) Activate() tea.Cmd {
	filter.Active = true
	return filter.Input.Focus()
}

// Deactivate removes keyboard focus but keeps the query, so a
// confirmed filter stays applied while the user navigates the list.
func (filter *FilterModel) Deactivate() {
	filter.Active = false
	filter.Input.Blur()
}

// Clear resets the filter input and deactivates it.
func (filter *FilterModel) Clear() {
	filter.Input.SetValue("")
	filter.Deactivate()
}

// Update forwards a message to the text input. The caller re-applies
// the filter after any change.
func (filter *FilterModel) Update(message tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	filter.Input, cmd = filter.Input.Update(message)
	return cmd
}

// ApplyFuzzy matches every entry's key against the current query and
// returns the matches sorted by descending score, ties broken by key
// so the order is stable. An empty query returns all entries with zero
// scores and no positions.
func (filter *FilterModel) ApplyFuzzy(entries []Entry) []ScoredEntry {
	query := filter.Query()
	if query == "" {
		results := make([]ScoredEntry, len(entries))
		for index, entry := range entries {
			results[index] = ScoredEntry{Entry: entry}
		}
		return results
	}

	pattern := []rune(query)
	slab := util.MakeSlab(slab16Size, slab32Size)

	var results []ScoredEntry
	for _, entry := range entries {
		match := FuzzyMatch(entry.Key, pattern, slab)
		if match.Score <= 0 {
			continue
		}
		results = append(results, ScoredEntry{
			Entry:        entry,
			Score:        match.Score,
			KeyPositions: match.Positions,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.Key < results[j].Entry.Key
	})
	return results
}

// View renders the filter bar. When active, shows the live input with
// its cursor. When inactive with text, shows the confirmed query as a
// subtle indicator. When inactive and empty, returns the empty string
// (hidden).
func (filter *FilterModel) View(theme Theme, width int) string {
	if !filter.Active && filter.Query() == "" {
		return ""
	}

	if filter.Active {
		return lipgloss.NewStyle().
			Foreground(theme.NormalText).
			Width(width).
			MaxWidth(width).
			Render(filter.Input.View())
	}

	return lipgloss.NewStyle().
		Foreground(theme.FaintText).
		Width(width).
		MaxWidth(width).
		Render(" filter: " + filter.Query())
}
