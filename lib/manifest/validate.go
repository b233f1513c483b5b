// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package manifest

import (
	"fmt"
	"regexp"
	"sort"
)

// envNamePattern matches valid environment variable names: start with
// a letter or underscore, followed by letters, digits, or underscores.
// Anchored to the full string. Derived names always satisfy this;
// explicit env fields are checked against it.
var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a Manifest for structural issues. Returns a list of
// human-readable issue descriptions. An empty list means the manifest
// is valid.
//
// Structural checks include:
//   - Version must be 1
//   - At least one entry is required
//   - Each entry must have a non-empty Key
//   - Each entry must resolve to a non-empty table (its own, or the
//     manifest default)
//   - Explicit Env values must be valid environment variable names
//   - Every entry's environment name (explicit or derived) must be
//     unique across the manifest
//   - The same table+key pair must not appear twice
func Validate(m *Manifest) []string {
	var issues []string

	if m.Version != Version {
		issues = append(issues, fmt.Sprintf(
			"version is %d, this tool understands version %d", m.Version, Version,
		))
	}

	if len(m.Entries) == 0 {
		issues = append(issues, "manifest has no entries (at least one is required)")
	}

	// Environment names must be unique across the whole manifest.
	// Two entries exporting to the same variable would silently
	// overwrite one secret with another.
	envNames := make(map[string]int, len(m.Entries))

	// The same secret fetched twice is always an authoring mistake:
	// either a stray duplicate or a missing env override.
	secrets := make(map[string]int, len(m.Entries))

	for index, entry := range m.Entries {
		prefix := fmt.Sprintf("entries[%d]", index)

		if entry.Key == "" {
			issues = append(issues, prefix+": key is empty")
			continue
		}

		table := entry.ResolvedTable(m.Table)
		if table == "" {
			issues = append(issues, fmt.Sprintf(
				"%s %q: no table (set the entry's table or the manifest default)",
				prefix, entry.Key,
			))
		}

		if entry.Env != "" && !envNamePattern.MatchString(entry.Env) {
			issues = append(issues, fmt.Sprintf(
				"%s %q: env %q is not a valid environment variable name (want %s)",
				prefix, entry.Key, entry.Env, envNamePattern,
			))
		} else {
			name, err := entry.ResolvedEnv()
			if err != nil {
				issues = append(issues, fmt.Sprintf("%s %q: %v", prefix, entry.Key, err))
			} else if firstIndex, exists := envNames[name]; exists {
				issues = append(issues, fmt.Sprintf(
					"%s %q: environment name %s already used at entries[%d]",
					prefix, entry.Key, name, firstIndex,
				))
			} else {
				envNames[name] = index
			}
		}

		if table != "" {
			pair := table + "\x00" + entry.Key
			if firstIndex, exists := secrets[pair]; exists {
				issues = append(issues, fmt.Sprintf(
					"%s: secret %s/%s already listed at entries[%d]",
					prefix, table, entry.Key, firstIndex,
				))
			} else {
				secrets[pair] = index
			}
		}
	}

	return issues
}

// FetchGroup is the set of keys to fetch from one table: one
// get-secrets request per group.
type FetchGroup struct {
	Table string
	Keys  []string
}

// GroupByTable partitions the manifest's entries into per-table fetch
// batches. Groups are sorted by table name; within a group, keys keep
// manifest order. Call only on a manifest that passed Validate —
// entries with no resolvable table are dropped here.
func (m *Manifest) GroupByTable() []FetchGroup {
	byTable := make(map[string][]string)
	for _, entry := range m.Entries {
		table := entry.ResolvedTable(m.Table)
		if table == "" || entry.Key == "" {
			continue
		}
		byTable[table] = append(byTable[table], entry.Key)
	}

	groups := make([]FetchGroup, 0, len(byTable))
	for table, keys := range byTable {
		groups = append(groups, FetchGroup{Table: table, Keys: keys})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Table < groups[j].Table })
	return groups
}
