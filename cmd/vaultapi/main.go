// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/commands"
)

func main() {
	if err := run(); err != nil {
		// Categorized errors print their message and map the category
		// to a documented exit code so scripts can branch on it.
		var tool *cli.ToolError
		if errors.As(err, &tool) {
			fmt.Fprintf(os.Stderr, "error: %v\n", tool)
			os.Exit(cli.CategoryExitCode(tool.Category))
		}

		// Commands that print their own output (like doctor) return an
		// ExitError with the desired exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return commands.Root().Execute(ctx, os.Args[1:], cli.NewCommandLogger())
}
