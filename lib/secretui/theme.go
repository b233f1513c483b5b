// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package secretui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the secret browser. All colors
// use lipgloss ANSI 256-color codes for broad terminal compatibility.
//
// The fields cover both universal chrome (text, selection, borders)
// and the value-kind tags that distinguish strings from objects from
// numbers at a glance in the key list.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Value-kind tag colors (the "str"/"num"/"obj" badges in the list).
	KindString lipgloss.Color
	KindNumber lipgloss.Color
	KindBool   lipgloss.Color
	KindNull   lipgloss.Color
	KindObject lipgloss.Color
	KindArray  lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Accent: focused scrollbar thumb and in-flight fetch indicator.
	Accent lipgloss.Color

	// Background tint for characters matched by the fuzzy filter.
	MatchBackground lipgloss.Color

	// Failed fetches and decrypt errors in the status bar.
	ErrorForeground lipgloss.Color
}

// KindColor returns the tag color for a value kind.
func (theme Theme) KindColor(kind ValueKind) lipgloss.Color {
	switch kind {
	case KindString:
		return theme.KindString
	case KindNumber:
		return theme.KindNumber
	case KindBool:
		return theme.KindBool
	case KindNull:
		return theme.KindNull
	case KindObject:
		return theme.KindObject
	case KindArray:
		return theme.KindArray
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme. Designed for
// 256-color terminals with a dark background (the common case for
// development environments and tmux sessions).
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	KindString: lipgloss.Color("114"), // green
	KindNumber: lipgloss.Color("75"),  // blue
	KindBool:   lipgloss.Color("220"), // amber
	KindNull:   lipgloss.Color("240"), // dim gray
	KindObject: lipgloss.Color("141"), // light purple
	KindArray:  lipgloss.Color("208"), // orange

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Accent: lipgloss.Color("220"), // amber

	MatchBackground: lipgloss.Color("58"), // dark amber

	ErrorForeground: lipgloss.Color("196"), // bright red
}
