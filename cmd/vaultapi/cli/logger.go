// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger for CLI command
// operations. When stderr is a terminal, uses slog.TextHandler for
// human-readable output. When stderr is piped or redirected (CI,
// scripts, cron), uses slog.JSONHandler for machine-parseable output.
//
// The level defaults to INFO and can be lowered or raised with the
// VAULTAPI_LOG environment variable (debug, info, warn, error).
//
// Callers scope the logger with command-specific context via With():
//
//	logger = logger.With("command", "export", "manifest", path)
func NewCommandLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: logLevelFromEnv()}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

// logLevelFromEnv reads VAULTAPI_LOG. Unknown or empty values mean
// INFO; a typo must not silence warnings.
func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("VAULTAPI_LOG")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
