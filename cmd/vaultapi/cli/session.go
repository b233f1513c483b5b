// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// Session holds the saved vault connection from "vaultapi login": the
// server URL and the API credential, the latter in a protected buffer.
// Analogous to SSH keys — set up once via login, then transparent.
type Session struct {
	// ServerURL is the base URL of the vault server
	// (e.g., "https://vault.example.com:8080").
	ServerURL string

	// Credential is the API key. Owned by the Session; call Close when
	// done (or hand it to a vaultapi.Client, which takes ownership).
	Credential *secret.Buffer
}

// Close releases the credential's protected memory.
func (s *Session) Close() error {
	if s.Credential == nil {
		return nil
	}
	return s.Credential.Close()
}

// sessionFile is the on-disk JSON shape. The API key lives in the file
// as a plain string (mode 0600 guards it at rest); LoadSession moves it
// into a protected buffer and zeroes the file bytes immediately after
// parsing.
type sessionFile struct {
	ServerURL string `json:"server_url"`
	APIKey    string `json:"api_key"`
}

// SessionFilePath returns the path to the session file. Checks the
// VAULTAPI_SESSION_FILE environment variable first, then falls back to
// ~/.config/vaultapi/session.json.
func SessionFilePath() string {
	if envPath := os.Getenv("VAULTAPI_SESSION_FILE"); envPath != "" {
		return envPath
	}

	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "vaultapi-session.json")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "vaultapi", "session.json")
}

// LoadSession reads the session from the well-known path. Returns a
// clear error message directing the user to "vaultapi login" if no
// session exists.
func LoadSession() (*Session, error) {
	return LoadSessionFrom(SessionFilePath())
}

// LoadSessionFrom reads a session from a specific file path.
func LoadSessionFrom(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no session found at %s — run \"vaultapi login\" first", path)
		}
		return nil, fmt.Errorf("reading session file %s: %w", path, err)
	}
	defer secret.Zero(data)

	var parsed sessionFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parsing session file %s: %w", path, err)
	}

	if parsed.ServerURL == "" {
		return nil, fmt.Errorf("session file %s has no server_url", path)
	}
	if parsed.APIKey == "" {
		return nil, fmt.Errorf("session file %s has no api_key", path)
	}

	// The parsed string is an unavoidable heap copy (Go strings are
	// immutable); it is short-lived and the buffer below is the durable
	// holder.
	credential, err := secret.NewFromString(parsed.APIKey)
	if err != nil {
		return nil, fmt.Errorf("protecting session credential: %w", err)
	}

	return &Session{ServerURL: parsed.ServerURL, Credential: credential}, nil
}

// SaveSession writes a session to the well-known path. Creates the
// parent directory with mode 0700 if it doesn't exist. The session file
// is written with mode 0600 (owner-only read/write) since it contains
// the API credential. The credential buffer is only read, not consumed.
func SaveSession(serverURL string, credential *secret.Buffer) error {
	return SaveSessionTo(serverURL, credential, SessionFilePath())
}

// SaveSessionTo writes a session to a specific file path.
func SaveSessionTo(serverURL string, credential *secret.Buffer, path string) error {
	data, err := json.MarshalIndent(sessionFile{
		ServerURL: serverURL,
		APIKey:    credential.String(),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	data = append(data, '\n')
	defer secret.Zero(data)

	directory := filepath.Dir(path)
	if err := os.MkdirAll(directory, 0700); err != nil {
		return fmt.Errorf("creating session directory %s: %w", directory, err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing session file %s: %w", path, err)
	}

	return nil
}
