// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Column layout for the key list. The kind tag column is fixed; the
// key column fills the remaining width.
//
//	 str  db_password
//	 obj  smtp_settings
//
// Tag labels are at most four characters ([ValueKind.Label]) plus one
// space on each side.
const kindColumnWidth = 6

// ListRenderer renders key rows within a given width.
type ListRenderer struct {
	theme Theme
	width int
}

// NewListRenderer creates a ListRenderer for the given width.
func NewListRenderer(theme Theme, width int) ListRenderer {
	return ListRenderer{theme: theme, width: width}
}

// RenderRow renders a single entry as a list row. The selected flag
// controls highlight styling. matchPositions contains rune indices in
// the key that matched the current fuzzy filter; when non-empty, those
// characters get the match highlight background.
func (renderer ListRenderer) RenderRow(entry Entry, selected bool, matchPositions []int) string {
	keyWidth := renderer.width - kindColumnWidth
	if keyWidth < 8 {
		keyWidth = 8
	}

	// Truncate before styling so highlight positions stay aligned with
	// what is actually on screen.
	keyText := ansi.Truncate(entry.Key, keyWidth, "…")
	kind := entry.Kind()

	if selected {
		baseStyle := lipgloss.NewStyle().
			Background(renderer.theme.SelectedBackground).
			Foreground(renderer.theme.SelectedForeground)

		tag := baseStyle.Bold(true).Render(padKindTag(kind.Label()))
		// On a selected row the background is already the selection
		// color; bold+underline makes matches pop instead.
		keyRendered := highlightKey(keyText, matchPositions, baseStyle, baseStyle.Bold(true).Underline(true))
		return baseStyle.Width(renderer.width).MaxWidth(renderer.width).Render(tag + keyRendered)
	}

	tagStyle := lipgloss.NewStyle().Foreground(renderer.theme.KindColor(kind))
	keyStyle := lipgloss.NewStyle().Foreground(renderer.theme.NormalText)
	matchStyle := lipgloss.NewStyle().
		Foreground(renderer.theme.NormalText).
		Background(renderer.theme.MatchBackground)

	row := tagStyle.Render(padKindTag(kind.Label())) +
		highlightKey(keyText, matchPositions, keyStyle, matchStyle)
	return lipgloss.NewStyle().Width(renderer.width).MaxWidth(renderer.width).Render(row)
}

// padKindTag pads a kind label into the fixed tag column: one leading
// space, the label, then spaces out to the column width.
func padKindTag(label string) string {
	padded := " " + label
	for len(padded) < kindColumnWidth {
		padded += " "
	}
	return padded
}

// highlightKey renders a key with character-level highlighting at the
// given rune positions. Positions index into the full key; characters
// truncated away are simply never reached. Consecutive runs of
// same-style characters are batched into a single Render call to keep
// ANSI output compact.
func highlightKey(key string, positions []int, baseStyle, highlightStyle lipgloss.Style) string {
	if len(positions) == 0 {
		return baseStyle.Render(key)
	}

	positionSet := make(map[int]bool, len(positions))
	for _, position := range positions {
		positionSet[position] = true
	}

	runes := []rune(key)
	var result strings.Builder
	runStart := 0
	isHighlighted := len(runes) > 0 && positionSet[0]

	for index := 1; index <= len(runes); index++ {
		currentHighlighted := index < len(runes) && positionSet[index]
		if currentHighlighted != isHighlighted || index == len(runes) {
			chunk := string(runes[runStart:index])
			if isHighlighted {
				result.WriteString(highlightStyle.Render(chunk))
			} else {
				result.WriteString(baseStyle.Render(chunk))
			}
			runStart = index
			isHighlighted = currentHighlighted
		}
	}

	return result.String()
}
