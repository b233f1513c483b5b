// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package cli provides the command framework for the vaultapi binary:
// the command tree, flag binding, structured errors, session handling,
// and output helpers.
//
// Commands are declared as [Command] values. Flags come from a params
// struct with `flag`/`desc`/`default` tags (see [BindFlags]); Run
// receives a context cancelled on SIGINT/SIGTERM and a *slog.Logger
// wired for the terminal (text on a TTY, JSON otherwise).
//
// Failures flow out as errors, categorized with [ToolError] so scripts
// can distinguish usage mistakes from transient server trouble by exit
// code. Only main calls os.Exit, via the ExitCode interface check.
package cli
