// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// detailHeaderLines is the fixed number of lines consumed by the
// detail pane header. This is constant so the scrollable body never
// shifts vertically when switching secrets.
//
// Layout:
//
//	Line 1: secret key (bold)
//	Line 2: kind + size (faint)
//	Line 3: separator
const detailHeaderLines = 3

// DetailPane wraps a bubbles viewport for scrollable secret values.
// The pane has a fixed header (key + metadata, [detailHeaderLines]
// tall) rendered above the viewport, and a scrollable
// syntax-highlighted body below.
type DetailPane struct {
	viewport viewport.Model
	theme    Theme
	width    int
	height   int

	// Retained for re-rendering on resize. entry is set by SetEntry
	// and cleared by Clear. When hasEntry is true, SetSize re-renders
	// the body at the new width so line wrapping adapts to terminal
	// resizes.
	hasEntry bool
	entry    Entry

	// Pre-rendered header string, set by SetEntry and rerender.
	header string
}

// NewDetailPane creates an empty detail pane.
func NewDetailPane(theme Theme) DetailPane {
	return DetailPane{
		theme: theme,
	}
}

// bodyHeight returns the number of lines available for the scrollable
// viewport body (total height minus the fixed header).
func (pane DetailPane) bodyHeight() int {
	result := pane.height - detailHeaderLines
	if result < 1 {
		result = 1
	}
	return result
}

// contentWidth returns the usable width for text content (total width
// minus the left padding column and right scrollbar column).
func (pane DetailPane) contentWidth() int {
	return pane.width - 2
}

// SetSize updates the detail pane dimensions. If the width changed and
// there is content displayed, the body is re-rendered at the new width
// so wrapping stays correct.
func (pane *DetailPane) SetSize(width, height int) {
	previousWidth := pane.width
	pane.width = width
	pane.height = height
	pane.viewport.Width = pane.contentWidth()
	pane.viewport.Height = pane.bodyHeight()

	if pane.hasEntry && width != previousWidth {
		pane.rerender()
	}
}

// SetEntry updates the detail pane with the rendered value of a
// secret. The viewport scrolls back to the top: a new secret's value
// has no relationship to the previous scroll position.
func (pane *DetailPane) SetEntry(entry Entry) {
	pane.hasEntry = true
	pane.entry = entry

	pane.header = pane.renderHeader()
	pane.viewport.SetContent(renderJSONBody(entry.Raw, pane.theme, pane.contentWidth()))
	pane.viewport.GotoTop()
}

// Clear removes the detail pane content.
func (pane *DetailPane) Clear() {
	pane.hasEntry = false
	pane.entry = Entry{}
	pane.header = ""
	pane.viewport.SetContent("")
	pane.viewport.GotoTop()
}

// rerender regenerates the body at the current width, preserving the
// scroll position as closely as possible.
func (pane *DetailPane) rerender() {
	previousOffset := pane.viewport.YOffset

	pane.header = pane.renderHeader()
	pane.viewport.SetContent(renderJSONBody(pane.entry.Raw, pane.theme, pane.contentWidth()))

	// Restore scroll position, clamped to the new content height.
	maxOffset := pane.viewport.TotalLineCount() - pane.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if previousOffset > maxOffset {
		previousOffset = maxOffset
	}
	pane.viewport.SetYOffset(previousOffset)
}

// renderHeader builds the fixed header lines for the current entry.
// Always exactly [detailHeaderLines] lines tall regardless of content.
func (pane DetailPane) renderHeader() string {
	contentWidth := pane.contentWidth()

	lineStyle := lipgloss.NewStyle().
		Width(contentWidth).
		MaxWidth(contentWidth)

	keyStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(pane.theme.HeaderForeground)

	sizeStyle := lipgloss.NewStyle().
		Foreground(pane.theme.FaintText)

	separatorStyle := lipgloss.NewStyle().
		Foreground(pane.theme.BorderColor)

	kind := pane.entry.Kind()
	kindStyle := lipgloss.NewStyle().Foreground(pane.theme.KindColor(kind))

	line1 := lineStyle.Render(keyStyle.Render(pane.entry.Key))
	line2 := lineStyle.Render(
		kindStyle.Render(kind.Label()) +
			sizeStyle.Render(fmt.Sprintf("  %d bytes", len(pane.entry.Raw))))
	separatorWidth := contentWidth
	if separatorWidth < 1 {
		separatorWidth = 1
	}
	line3 := separatorStyle.Render(strings.Repeat("─", separatorWidth))

	return strings.Join([]string{line1, line2, line3}, "\n")
}

// View renders the detail pane as a docked panel with a fixed header,
// scrollable body, left padding, and a right scrollbar.
func (pane DetailPane) View(focused bool) string {
	contentWidth := pane.contentWidth()

	if !pane.hasEntry {
		emptyStyle := lipgloss.NewStyle().
			Foreground(pane.theme.FaintText)

		contentStyle := lipgloss.NewStyle().
			PaddingLeft(1).
			Width(pane.width - 1).
			Height(pane.height)

		content := contentStyle.Render(
			lipgloss.Place(
				contentWidth, pane.height,
				lipgloss.Center, lipgloss.Center,
				emptyStyle.Render("Select a secret to view its value"),
			),
		)

		scrollbar := renderScrollbar(
			pane.theme, pane.height,
			0, pane.height, 0,
			focused,
		)
		return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollbar)
	}

	// Build the content column as exactly pane.height lines: fixed
	// header (detailHeaderLines) + scrollable body (remainder).
	paddingStyle := lipgloss.NewStyle().
		PaddingLeft(1).
		Width(pane.width - 1)

	headerView := paddingStyle.Height(detailHeaderLines).Render(pane.header)
	bodyView := paddingStyle.Height(pane.bodyHeight()).Render(pane.viewport.View())
	content := headerView + "\n" + bodyView

	// Scrollbar: blank column for the header rows, actual scrollbar
	// for the body rows. This way the scrollbar only covers the
	// region it actually scrolls.
	headerColumn := lipgloss.NewStyle().
		Width(1).
		Height(detailHeaderLines).
		Render("")
	bodyScrollbar := renderScrollbar(
		pane.theme, pane.bodyHeight(),
		pane.viewport.TotalLineCount(), pane.viewport.Height, pane.viewport.YOffset,
		focused,
	)
	scrollColumn := headerColumn + "\n" + bodyScrollbar

	return lipgloss.JoinHorizontal(lipgloss.Top, content, scrollColumn)
}

// ScrollUp scrolls the detail pane up by one line.
func (pane *DetailPane) ScrollUp() {
	pane.viewport.LineUp(1)
}

// ScrollDown scrolls the detail pane down by one line.
func (pane *DetailPane) ScrollDown() {
	pane.viewport.LineDown(1)
}

// HalfPageUp scrolls the detail pane up by half a page.
func (pane *DetailPane) HalfPageUp() {
	pane.viewport.HalfViewUp()
}

// HalfPageDown scrolls the detail pane down by half a page.
func (pane *DetailPane) HalfPageDown() {
	pane.viewport.HalfViewDown()
}

// GotoTop scrolls the detail pane to the first line.
func (pane *DetailPane) GotoTop() {
	pane.viewport.GotoTop()
}

// GotoBottom scrolls the detail pane to the last line.
func (pane *DetailPane) GotoBottom() {
	pane.viewport.GotoBottom()
}
