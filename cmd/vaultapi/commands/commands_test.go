// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package commands

import (
	"strings"
	"testing"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
)

// TestCommandTreeShape walks the full command tree and validates the
// structural invariants help generation and dispatch rely on: every
// node has a name, every group or leaf is runnable or dispatchable,
// and sibling names never collide.
func TestCommandTreeShape(t *testing.T) {
	root := Root()
	walkCommands(root, nil, func(command *cli.Command, path []string) {
		location := strings.Join(path, " ")

		if command.Name == "" {
			t.Errorf("%s: command with empty name", location)
		}
		if command.Run == nil && len(command.Subcommands) == 0 {
			t.Errorf("%s: leaf command with no Run", location)
		}
		if command != root && command.Summary == "" {
			t.Errorf("%s: command with no Summary", location)
		}

		seen := make(map[string]bool)
		for _, sub := range command.Subcommands {
			if seen[sub.Name] {
				t.Errorf("%s: duplicate subcommand %q", location, sub.Name)
			}
			seen[sub.Name] = true
		}
	})
}

// TestCommandTreeExamples validates that every example invocation
// starts with the binary name, so help text can be pasted directly.
func TestCommandTreeExamples(t *testing.T) {
	walkCommands(Root(), nil, func(command *cli.Command, path []string) {
		for _, example := range command.Examples {
			if example.Command == "" {
				t.Errorf("%s: example with empty command", strings.Join(path, " "))
				continue
			}
			if !strings.HasPrefix(example.Command, "vaultapi ") {
				t.Errorf("%s: example %q does not start with \"vaultapi \"",
					strings.Join(path, " "), example.Command)
			}
			if example.Description == "" {
				t.Errorf("%s: example %q has no description",
					strings.Join(path, " "), example.Command)
			}
		}
	})
}

// walkCommands recursively visits every command in the tree,
// calling visit for each node with the accumulated command path.
func walkCommands(command *cli.Command, path []string, visit func(*cli.Command, []string)) {
	current := make([]string, len(path)+1)
	copy(current, path)
	current[len(path)] = command.Name
	visit(command, current)
	for _, sub := range command.Subcommands {
		walkCommands(sub, current, visit)
	}
}
