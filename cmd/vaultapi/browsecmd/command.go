// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package browsecmd

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/lib/secretui"
)

// browseParams holds the parameters for the browse command.
type browseParams struct {
	cli.ClientParams
	LogOutput string `flag:"log-output" desc:"write JSON log records to this file (in addition to the status bar)"`
}

// Command returns the "browse" command: an interactive terminal UI
// over a decrypted table.
func Command() *cli.Command {
	var params browseParams

	return &cli.Command{
		Name:    "browse",
		Summary: "Browse a table in an interactive TUI",
		Description: `Fetch and decrypt a table, then browse it interactively: a fuzzy-
filterable key list on the left, the selected secret's value with
syntax highlighting on the right.

The table name comes from the first argument, or from the config file
when omitted. The table is fetched once at startup and again on each
press of "r". Decryption happens locally; nothing is written to disk.

Keys: arrows or j/k navigate, / filters, enter inspects a value, tab
moves focus between panes, r refetches, q quits.`,
		Usage: "vaultapi browse [table] [flags]",
		Examples: []cli.Example{
			{
				Description: "Browse the default table",
				Command:     "vaultapi browse",
			},
			{
				Description: "Browse a specific table",
				Command:     "vaultapi browse production",
			},
			{
				Description: "Keep a debug log of the session",
				Command:     "vaultapi browse --log-output /tmp/browse.log",
			},
		},
		Params: func() any { return &params },
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument: %s", args[1])
			}
			return runBrowse(args, &params)
		},
	}
}

// runBrowse connects to the vault and runs the TUI until the user
// quits.
//
// Background logging (the client's request logging during fetches) is
// routed through a TUILogHandler that shows warnings and errors in the
// status bar instead of writing to stderr, which would corrupt the
// alternate-screen display. --log-output additionally captures every
// record to a JSON file for post-mortem debugging.
func runBrowse(args []string, params *browseParams) error {
	tuiHandler := secretui.NewTUILogHandler(slog.LevelWarn)

	backgroundLogger := slog.New(tuiHandler)
	if params.LogOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(params.LogOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", params.LogOutput, err)
		}
		defer closeFile()
		backgroundLogger = slog.New(fanoutHandler{tuiHandler, fileHandler})
	}

	client, cfg, err := params.Connect(backgroundLogger)
	if err != nil {
		return err
	}
	defer client.Close()

	table := cfg.Table
	if len(args) == 1 {
		table = args[0]
	}

	source := secretui.NewClientSource(client, table)
	model := secretui.NewModel(source)
	program := tea.NewProgram(model, tea.WithAltScreen())

	// Wire the handler to the program so log records flow into
	// bubbletea's message loop. This must happen after NewProgram
	// (which creates the program) but before Run processes messages.
	// Records arriving earlier are silently dropped — acceptable
	// because the TUI isn't rendering yet.
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

// openFileLogHandler creates a slog.JSONHandler that writes to the
// given file path. Returns the handler, a cleanup function to close
// the file, and any error. The file is created or truncated.
func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler is a slog.Handler that sends each record to multiple
// underlying handlers. A record is enabled if any sub-handler is
// enabled for that level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
