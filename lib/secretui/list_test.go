// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

func TestRenderRowLayout(t *testing.T) {
	renderer := NewListRenderer(DefaultTheme, 30)
	entry := Entry{Key: "db_password", Raw: json.RawMessage(`"hunter2"`)}

	row := ansi.Strip(renderer.RenderRow(entry, false, nil))

	if !strings.HasPrefix(row, " str  db_password") {
		t.Errorf("row should start with the kind tag and key, got %q", row)
	}
	if got := ansi.StringWidth(row); got != 30 {
		t.Errorf("row width = %d, want 30", got)
	}
}

func TestRenderRowKindTags(t *testing.T) {
	renderer := NewListRenderer(DefaultTheme, 30)

	tests := []struct {
		raw string
		tag string
	}{
		{`"x"`, "str"},
		{`12`, "num"},
		{`{"a":1}`, "obj"},
		{`[1]`, "arr"},
		{`true`, "bool"},
		{`null`, "null"},
	}

	for _, test := range tests {
		entry := Entry{Key: "k", Raw: json.RawMessage(test.raw)}
		row := ansi.Strip(renderer.RenderRow(entry, false, nil))
		if !strings.Contains(row, " "+test.tag+" ") {
			t.Errorf("row for %s should carry tag %q, got %q", test.raw, test.tag, row)
		}
	}
}

func TestRenderRowTruncatesLongKey(t *testing.T) {
	// Width 14 leaves 8 columns for the key after the tag column.
	renderer := NewListRenderer(DefaultTheme, 14)
	entry := Entry{Key: "db_password_rotation_schedule", Raw: json.RawMessage(`"x"`)}

	row := ansi.Strip(renderer.RenderRow(entry, false, nil))

	if strings.Contains(row, "db_password_rotation_schedule") {
		t.Errorf("long key should be truncated, got %q", row)
	}
	if !strings.Contains(row, "…") {
		t.Errorf("truncated key should end with an ellipsis, got %q", row)
	}
}

func TestRenderRowHighlightKeepsContent(t *testing.T) {
	// Match highlighting restyles characters; it must never change
	// which characters are on screen.
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(previous)

	renderer := NewListRenderer(DefaultTheme, 30)
	entry := Entry{Key: "db_password", Raw: json.RawMessage(`"x"`)}

	plain := renderer.RenderRow(entry, false, nil)
	highlighted := renderer.RenderRow(entry, false, []int{0, 1, 3})

	if plain == highlighted {
		t.Error("match positions should change the styling")
	}
	if ansi.Strip(plain) != ansi.Strip(highlighted) {
		t.Errorf("highlighting changed visible characters: %q vs %q",
			ansi.Strip(plain), ansi.Strip(highlighted))
	}
}

func TestRenderRowSelected(t *testing.T) {
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.ANSI256)
	defer lipgloss.SetColorProfile(previous)

	renderer := NewListRenderer(DefaultTheme, 30)
	entry := Entry{Key: "api_token", Raw: json.RawMessage(`"t"`)}

	normal := renderer.RenderRow(entry, false, nil)
	selected := renderer.RenderRow(entry, true, nil)

	if normal == selected {
		t.Error("selected row should be styled differently")
	}
	if !strings.Contains(ansi.Strip(selected), "api_token") {
		t.Error("selected row should still show the key")
	}
}

func TestRenderScrollbarThumbTracksOffset(t *testing.T) {
	// 100 items, 10 visible: thumb is 1 row tall and moves with the
	// offset.
	top := strings.Split(ansi.Strip(renderScrollbar(DefaultTheme, 10, 100, 10, 0, false)), "\n")
	if len(top) != 10 {
		t.Fatalf("scrollbar should be 10 lines, got %d", len(top))
	}
	if top[0] != "┃" {
		t.Errorf("thumb should be at the top for offset 0, got %q", top[0])
	}
	if top[9] != "│" {
		t.Errorf("bottom should be track for offset 0, got %q", top[9])
	}

	bottom := strings.Split(ansi.Strip(renderScrollbar(DefaultTheme, 10, 100, 10, 90, false)), "\n")
	if bottom[9] != "┃" {
		t.Errorf("thumb should be at the bottom for max offset, got %q", bottom[9])
	}
	if bottom[0] != "│" {
		t.Errorf("top should be track for max offset, got %q", bottom[0])
	}
}

func TestRenderScrollbarContentFits(t *testing.T) {
	// When everything fits the thumb spans the full height.
	lines := strings.Split(ansi.Strip(renderScrollbar(DefaultTheme, 4, 3, 10, 0, true)), "\n")
	if len(lines) != 4 {
		t.Fatalf("scrollbar should be 4 lines, got %d", len(lines))
	}
	for index, line := range lines {
		if line != "┃" {
			t.Errorf("line %d should be thumb when content fits, got %q", index, line)
		}
	}
}
