// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusList means navigation keys move the key list cursor.
	FocusList FocusRegion = iota
	// FocusDetail means navigation keys scroll the value viewport.
	FocusDetail
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
)

// fetchedMsg delivers the result of an asynchronous table fetch.
// err is non-nil when the fetch failed; the previous snapshot stays
// on screen so a transient network error doesn't blank the browser.
type fetchedMsg struct {
	entries []Entry
	err     error
}

// Model is the top-level bubbletea model for the secret browser TUI.
type Model struct {
	source Source
	theme  Theme
	keys   KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Fetch state. fetching is true from program start (the initial
	// fetch runs as the Init command) and during manual refreshes.
	fetching   bool
	fetchError string

	// List state. entries is the full fetched snapshot; visible is
	// the filtered view of it. highlights maps secret keys to matched
	// rune positions when a fuzzy filter is applied.
	entries      []Entry
	visible      []Entry
	highlights   map[string][]int
	cursor       int
	scrollOffset int
	selectedKey  string // Stable focus: track selection by key across refetches.

	// Two-pane layout.
	focusRegion FocusRegion
	priorFocus  FocusRegion // Saved focus when entering filter mode.
	filter      FilterModel
	detailPane  DetailPane

	// Status bar notice delivered by TUILogHandler. Cleared after
	// logRecordFadeDelay.
	logNotice      string
	logNoticeLevel slog.Level
}

// NewModel creates a Model connected to the given table source.
// Construction does not touch the network: the initial fetch runs as
// the Init command inside the bubbletea event loop.
func NewModel(source Source) Model {
	return Model{
		source:     source,
		theme:      DefaultTheme,
		keys:       DefaultKeyMap,
		fetching:   true,
		filter:     NewFilterModel(),
		detailPane: NewDetailPane(DefaultTheme),
	}
}

// Init implements tea.Model. Kicks off the initial table fetch.
func (model Model) Init() tea.Cmd {
	return fetchTable(model.source)
}

// fetchTable returns a tea.Cmd that fetches the table in a background
// goroutine and delivers the result as a fetchedMsg. The client's own
// request timeout bounds the call.
func fetchTable(source Source) tea.Cmd {
	return func() tea.Msg {
		entries, err := source.Fetch(context.Background())
		return fetchedMsg{entries: entries, err: err}
	}
}

// Update implements tea.Model. Routes keyboard events based on the
// current focus region and handles fetch results and layout changes.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		// When the filter is active, route all input to it first,
		// except for ctrl+c (quit), Esc (clear) and Enter (confirm).
		if model.focusRegion == FocusFilter {
			return model.handleFilterKeys(message)
		}

		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.FocusToggle):
			if model.focusRegion == FocusList {
				model.focusRegion = FocusDetail
			} else {
				model.focusRegion = FocusList
			}

		case key.Matches(message, model.keys.FilterActivate):
			model.priorFocus = model.focusRegion
			model.focusRegion = FocusFilter
			// Reset list position to the top so the user sees results
			// from the beginning as they type.
			model.cursor = 0
			model.scrollOffset = 0
			// Focus mutates the filter; bind the command before the
			// return statement copies the model.
			command := model.filter.Activate()
			return model, command

		case key.Matches(message, model.keys.FilterClear):
			if model.filter.Query() != "" {
				model.filter.Clear()
				model.applyFilter()
			}

		case key.Matches(message, model.keys.Refresh):
			// Ignore while a fetch is already in flight so mashing r
			// doesn't queue redundant round trips.
			if !model.fetching {
				model.fetching = true
				return model, fetchTable(model.source)
			}

		case key.Matches(message, model.keys.Select):
			if model.focusRegion == FocusList && model.cursor < len(model.visible) {
				model.focusRegion = FocusDetail
			}

		default:
			if model.focusRegion == FocusList {
				model.handleListKeys(message)
			} else {
				model.handleDetailKeys(message)
			}
		}

	case fetchedMsg:
		model.fetching = false
		if message.err != nil {
			model.fetchError = message.err.Error()
			return model, nil
		}
		model.fetchError = ""
		model.entries = message.entries
		model.applyFilter()

	case logRecordMsg:
		model.logNotice = message.Summary
		model.logNoticeLevel = message.Level
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{}
		})

	case logRecordFadeMsg:
		model.logNotice = ""

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.updatePaneSizes()
		model.syncDetailPane()
	}
	return model, nil
}

// handleFilterKeys processes keystrokes when the filter input has
// focus. Regular characters go to the text input; Esc clears or exits,
// Enter confirms the filter and returns focus to the list.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		// ctrl+c always quits, even in filter mode ('q' is a regular
		// character here).
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		// Esc: if there's filter text, clear it and keep typing; if
		// already empty, exit filter mode.
		if model.filter.Query() != "" {
			model.filter.Input.SetValue("")
			model.applyFilter()
		} else {
			model.filter.Deactivate()
			model.focusRegion = model.priorFocus
		}
		return model, nil

	case message.Type == tea.KeyEnter:
		// Confirm filter and return focus to the list. The query stays
		// applied until cleared with Esc.
		model.filter.Deactivate()
		model.focusRegion = FocusList
		return model, nil
	}

	cmd := model.filter.Update(message)
	model.applyFilter()
	return model, cmd
}

// handleListKeys processes navigation keys when the list has focus.
func (model *Model) handleListKeys(message tea.KeyMsg) {
	previousCursor := model.cursor

	switch {
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}

	case key.Matches(message, model.keys.Down):
		if model.cursor < len(model.visible)-1 {
			model.cursor++
		}

	case key.Matches(message, model.keys.PageUp):
		target := model.cursor - model.visibleHeight()
		if target < 0 {
			target = 0
		}
		model.cursor = model.clampedIndex(target)

	case key.Matches(message, model.keys.PageDown):
		target := model.cursor + model.visibleHeight()
		if len(model.visible) > 0 && target >= len(model.visible) {
			target = len(model.visible) - 1
		}
		model.cursor = model.clampedIndex(target)

	case key.Matches(message, model.keys.Home):
		model.cursor = 0

	case key.Matches(message, model.keys.End):
		if len(model.visible) > 0 {
			model.cursor = len(model.visible) - 1
		}
	}

	model.ensureCursorVisible()

	if model.cursor != previousCursor {
		model.syncDetailPane()
	}
}

// handleDetailKeys processes navigation keys when the value pane has
// focus.
func (model *Model) handleDetailKeys(message tea.KeyMsg) {
	switch {
	case key.Matches(message, model.keys.Up):
		model.detailPane.ScrollUp()
	case key.Matches(message, model.keys.Down):
		model.detailPane.ScrollDown()
	case key.Matches(message, model.keys.PageUp):
		model.detailPane.HalfPageUp()
	case key.Matches(message, model.keys.PageDown):
		model.detailPane.HalfPageDown()
	case key.Matches(message, model.keys.Home):
		model.detailPane.GotoTop()
	case key.Matches(message, model.keys.End):
		model.detailPane.GotoBottom()
	}
}

// applyFilter recomputes the visible entries from the full snapshot
// and the current filter query. While the user is typing, the cursor
// snaps to the top so the best match is always in view; otherwise the
// previous selection is restored when it survives the filter.
func (model *Model) applyFilter() {
	results := model.filter.ApplyFuzzy(model.entries)
	model.visible = make([]Entry, len(results))
	model.highlights = make(map[string][]int, len(results))
	for index, result := range results {
		model.visible[index] = result.Entry
		if len(result.KeyPositions) > 0 {
			model.highlights[result.Entry.Key] = result.KeyPositions
		}
	}

	if model.filter.Active {
		model.cursor = 0
		model.scrollOffset = 0
		if len(model.visible) > 0 {
			model.selectedKey = model.visible[0].Key
		}
	} else {
		model.restoreSelection()
	}

	model.ensureCursorVisible()
	model.syncDetailPane()
}

// restoreSelection attempts to find the previously selected key in the
// rebuilt visible list and move the cursor there. If not found, clamps
// the cursor to a valid position.
func (model *Model) restoreSelection() {
	if model.selectedKey == "" {
		model.cursor = 0
		return
	}

	for index, entry := range model.visible {
		if entry.Key == model.selectedKey {
			model.cursor = index
			return
		}
	}

	// The selected key is no longer in the list. Clamp the cursor.
	model.cursor = model.clampedIndex(model.cursor)
}

// clampedIndex returns position clamped to valid visible-list bounds.
func (model *Model) clampedIndex(position int) int {
	if len(model.visible) == 0 {
		return 0
	}
	if position < 0 {
		return 0
	}
	if position >= len(model.visible) {
		return len(model.visible) - 1
	}
	return position
}

// syncDetailPane updates the value pane to reflect the currently
// selected secret, or clears it when nothing is selected. Skipped
// until the first WindowSizeMsg because rendering needs real pane
// dimensions.
func (model *Model) syncDetailPane() {
	if !model.ready {
		return
	}
	if model.cursor < 0 || model.cursor >= len(model.visible) {
		model.detailPane.Clear()
		return
	}
	entry := model.visible[model.cursor]
	model.selectedKey = entry.Key
	model.detailPane.SetEntry(entry)
}

// ensureCursorVisible adjusts scrollOffset so the cursor is within the
// visible window.
func (model *Model) ensureCursorVisible() {
	height := model.visibleHeight()
	if height <= 0 {
		return
	}

	// Clamp scrollOffset so we never scroll past the end of the list.
	// This handles refetches and filters shrinking the list below the
	// old offset.
	maxOffset := len(model.visible) - height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}

	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+height {
		model.scrollOffset = model.cursor - height + 1
	}
}

// contentStartY returns the Y coordinate where the content area
// begins. The top chrome line is always exactly 1 row: either the
// header bar (normal) or the filter bar (when the filter is active).
// The filter bar replaces the header rather than pushing content down.
func (model Model) contentStartY() int {
	return 1
}

// visibleHeight returns the number of list rows that fit between the
// chrome elements: top bar above, bottom separator (1) and help bar
// (1) below.
func (model Model) visibleHeight() int {
	return model.height - model.contentStartY() - 2
}

// listWidth returns the width of the key list pane in columns. Fixed
// at 2/5 of the terminal: keys are short, values are where the space
// matters.
func (model Model) listWidth() int {
	return model.width * 2 / 5
}

// updatePaneSizes recalculates pane dimensions after a resize.
func (model *Model) updatePaneSizes() {
	// 1 column for the vertical divider between panes.
	detailWidth := model.width - model.listWidth() - 1
	if detailWidth < 10 {
		detailWidth = 10
	}
	model.detailPane.SetSize(detailWidth, model.visibleHeight())
}

// View implements tea.Model. Renders the full TUI frame with two panes.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	if len(model.visible) == 0 && model.filter.Query() == "" {
		return model.renderEmpty()
	}

	var sections []string

	// Top chrome line: either the header bar or the filter bar. The
	// filter bar replaces the header so the layout doesn't shift.
	filterView := model.filter.View(model.theme, model.width)
	if filterView != "" {
		sections = append(sections, filterView)
	} else {
		sections = append(sections, model.renderHeader())
	}

	// Two-pane content area with vertical divider.
	listView := model.renderListPane()
	divider := model.renderDivider()
	detailFocused := model.focusRegion == FocusDetail
	detailView := model.detailPane.View(detailFocused)
	contentArea := lipgloss.JoinHorizontal(lipgloss.Top, listView, divider, detailView)
	sections = append(sections, contentArea)

	// Bottom separator.
	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator)

	sections = append(sections, model.renderHelp())

	return strings.Join(sections, "\n")
}

// renderEmpty renders the full-screen state shown before any data is
// on screen: the initial fetch, a fetch failure with nothing to fall
// back to, or a genuinely empty table.
func (model Model) renderEmpty() string {
	if model.fetchError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(model.theme.ErrorForeground)
		hintStyle := lipgloss.NewStyle().
			Foreground(model.theme.HelpText)
		content := errorStyle.Render("Fetch failed: "+model.fetchError) +
			"\n\n" + hintStyle.Render("r retry   q quit")
		return lipgloss.Place(
			model.width, model.height,
			lipgloss.Center, lipgloss.Center,
			content,
		)
	}

	text := "No secrets in " + model.source.Table() + "."
	if model.fetching {
		text = "Fetching " + model.source.Table() + "…"
	}

	messageStyle := lipgloss.NewStyle().
		Foreground(model.theme.FaintText)

	return lipgloss.Place(
		model.width, model.height,
		lipgloss.Center, lipgloss.Center,
		messageStyle.Render(text),
	)
}

// renderHeader renders the top bar: the table name embedded in a
// horizontal rule with fetch stats on the right.
//
// Example: ─── vault_secrets ─────────────────── 12 secrets ─
func (model Model) renderHeader() string {
	separatorStyle := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor)
	nameStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(model.theme.HeaderForeground)
	statsStyle := lipgloss.NewStyle().
		Foreground(model.theme.FaintText)
	if model.fetching {
		statsStyle = lipgloss.NewStyle().Foreground(model.theme.Accent)
	}

	tableName := model.source.Table()
	left := separatorStyle.Render("───") + " " + nameStyle.Render(tableName) + " "
	leftWidth := 3 + 1 + lipgloss.Width(tableName) + 1

	statsText := fmt.Sprintf("%d secrets", len(model.entries))
	if model.fetching {
		statsText = "fetching…"
	}
	statsWidth := lipgloss.Width(statsText)

	// Fill the gap between the name and the stats with rule characters,
	// leaving one space on each side of the stats.
	fillCount := model.width - leftWidth - statsWidth - 3
	if fillCount < 1 {
		fillCount = 1
	}
	fill := separatorStyle.Render(strings.Repeat("─", fillCount))

	return left + fill + " " + statsStyle.Render(statsText) + " " + separatorStyle.Render("─")
}

// renderListPane renders the key list with its right scrollbar.
func (model Model) renderListPane() string {
	listWidth := model.listWidth()
	focused := model.focusRegion == FocusList

	// Reserve 1 column for the scrollbar.
	rowWidth := listWidth - 1
	renderer := NewListRenderer(model.theme, rowWidth)

	height := model.visibleHeight()
	if height < 0 {
		height = 0
	}

	var rows []string
	for index := model.scrollOffset; index < model.scrollOffset+height && index < len(model.visible); index++ {
		entry := model.visible[index]
		rows = append(rows, renderer.RenderRow(entry, index == model.cursor, model.highlights[entry.Key]))
	}

	// Pad empty rows so the pane always fills its height.
	rendered := len(rows)
	if rendered < height {
		emptyStyle := lipgloss.NewStyle().Width(rowWidth)
		for padding := rendered; padding < height; padding++ {
			rows = append(rows, emptyStyle.Render(""))
		}
	}

	scrollbar := renderScrollbar(
		model.theme, height,
		len(model.visible), height, model.scrollOffset,
		focused,
	)

	contentStyle := lipgloss.NewStyle().
		Width(rowWidth).
		Height(height)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		contentStyle.Render(strings.Join(rows, "\n")),
		scrollbar,
	)
}

// renderDivider renders the single-column vertical divider between the
// list and value panes.
func (model Model) renderDivider() string {
	height := model.visibleHeight()
	if height < 0 {
		height = 0
	}

	dividerStyle := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor)

	lines := make([]string, height)
	for index := range lines {
		lines[index] = "│"
	}

	return dividerStyle.Width(1).Height(height).Render(strings.Join(lines, "\n"))
}

// renderHelp renders the bottom help bar with key hints, list
// position, and any pending notice (fetch error or log record).
func (model Model) renderHelp() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)

	focusIndicator := "LIST"
	switch model.focusRegion {
	case FocusDetail:
		focusIndicator = "VALUE"
	case FocusFilter:
		focusIndicator = "FILTER"
	}

	help := fmt.Sprintf(" [%s] q quit  ↑↓ navigate  ⏎ view  Tab focus  / filter  r refresh",
		focusIndicator)

	if len(model.visible) > 0 {
		help += fmt.Sprintf("  %d/%d", model.cursor+1, len(model.visible))
	}

	// Error and log notices share the tail of the bar; a fetch error
	// outranks a log record.
	if model.fetchError != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(model.theme.ErrorForeground).
			Bold(true)
		help += "  " + errorStyle.Render("Error: "+model.fetchError)
	} else if model.logNotice != "" {
		noticeStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		switch {
		case model.logNoticeLevel >= slog.LevelError:
			noticeStyle = lipgloss.NewStyle().Foreground(model.theme.ErrorForeground)
		case model.logNoticeLevel >= slog.LevelWarn:
			noticeStyle = lipgloss.NewStyle().Foreground(model.theme.Accent)
		}
		help += "  " + noticeStyle.Render(model.logNotice)
	}

	return style.Render(help)
}
