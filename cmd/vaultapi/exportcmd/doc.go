// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package exportcmd implements the export and unseal commands:
// manifest-driven batch fetching with env/json rendering, age sealing
// for operator handoff, and encrypted bundles for machine handoff.
package exportcmd
