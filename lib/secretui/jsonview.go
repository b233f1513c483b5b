// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// renderJSONBody produces the detail pane's scrollable body: the
// entry's value re-indented and syntax-highlighted, wrapped to the
// given width so no line escapes the viewport.
//
// The color profile is forced to ANSI256: this output is always for
// terminal display (bubbletea TUI), so auto-detection — which would
// produce uncolored output in test environments with no TTY — is
// bypassed. SetColorProfile is required because
// lipgloss.Renderer.ColorProfile() ignores the termenv.Output profile
// and re-detects from the environment unless explicitColorProfile is
// set.
func renderJSONBody(raw []byte, theme Theme, width int) string {
	if width < 1 {
		width = 1
	}

	lipRenderer := lipgloss.NewRenderer(os.Stderr, termenv.WithProfile(termenv.ANSI256))
	lipRenderer.SetColorProfile(termenv.ANSI256)

	var indented bytes.Buffer
	if err := json.Indent(&indented, raw, "", "  "); err != nil {
		// The bytes came through the decrypt pipeline's JSON parse, so
		// this path means a programming error upstream; showing the
		// raw bytes dimmed beats showing nothing.
		plain := lipRenderer.NewStyle().Foreground(theme.FaintText).Render(string(raw))
		return lipgloss.NewStyle().Width(width).Render(plain)
	}

	var highlighted strings.Builder
	err := quick.Highlight(&highlighted, indented.String(), "json", "terminal256", "monokai")
	if err != nil {
		plain := lipRenderer.NewStyle().Foreground(theme.NormalText).Render(indented.String())
		return lipgloss.NewStyle().Width(width).Render(plain)
	}

	// Wrap after highlighting; lipgloss wrapping is ANSI-aware so the
	// chroma styling survives.
	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(highlighted.String(), "\n"))
}
