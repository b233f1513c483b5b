// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/thevickypedia/VaultAPI-Client/lib/config"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
	"github.com/thevickypedia/VaultAPI-Client/lib/vaultapi"
)

// ClientParams holds the shared connection flags for commands that talk
// to the vault. Embed it in a command's params struct; [BindFlags]
// binds it through the [FlagBinder] interface.
type ClientParams struct {
	// Server overrides the server URL from config and session.
	Server string
	// APIKeyFile reads the credential from a file ("-" for stdin)
	// instead of the environment or session.
	APIKeyFile string
	// ConfigPath overrides the config file location.
	ConfigPath string
}

// AddFlags registers --server, --apikey-file, and --config.
func (p *ClientParams) AddFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.Server, "server", "", "vault server URL (overrides config and session)")
	flagSet.StringVar(&p.APIKeyFile, "apikey-file", "", "read the API key from this file (\"-\" for stdin)")
	flagSet.StringVar(&p.ConfigPath, "config", "", "path to config file")
}

// Connect resolves configuration, credential, and server URL, and
// returns a ready client plus the loaded config (for command-level
// defaults like the table name). The client owns the credential; the
// caller must Close it.
//
// Credential resolution order: --apikey-file, VAULTAPI_KEY, session
// file. Server URL resolution order: --server, VAULTAPI_SERVER, config
// file, session file.
func (p *ClientParams) Connect(logger *slog.Logger) (*vaultapi.Client, *config.Config, error) {
	cfg, err := config.Load(p.ConfigPath)
	if err != nil {
		return nil, nil, Validation("%w", err)
	}

	serverURL, credential, err := p.resolve(cfg)
	if err != nil {
		return nil, nil, err
	}

	client, err := vaultapi.NewClient(vaultapi.ClientConfig{
		ServerURL:             serverURL,
		Credential:            credential,
		HTTPClient:            &http.Client{Timeout: cfg.RequestTimeout()},
		Logger:                logger,
		Transit:               cfg.TransitParams(),
		DecryptPreviousBucket: cfg.DecryptPreviousBucket,
	})
	if err != nil {
		credential.Close()
		return nil, nil, Validation("%w", err)
	}
	return client, cfg, nil
}

// resolve produces the server URL and credential buffer. On success
// the caller owns the buffer.
func (p *ClientParams) resolve(cfg *config.Config) (string, *secret.Buffer, error) {
	var credential *secret.Buffer
	var sessionURL string

	if p.APIKeyFile != "" {
		buffer, err := secret.ReadFromPath(p.APIKeyFile)
		if err != nil {
			return "", nil, Validation("reading API key from %s: %w", p.APIKeyFile, err)
		}
		credential = buffer
	} else if buffer, ok := secret.FromEnv("VAULTAPI_KEY"); ok {
		credential = buffer
	}

	if credential == nil {
		session, err := LoadSession()
		if err != nil {
			return "", nil, NotFound("%w", err).
				WithHint("Set VAULTAPI_KEY or pass --apikey-file to authenticate without a session.")
		}
		credential = session.Credential
		sessionURL = session.ServerURL
	}

	serverURL := p.Server
	if serverURL == "" {
		serverURL = os.Getenv("VAULTAPI_SERVER")
	}
	if serverURL == "" {
		serverURL = cfg.ServerURL
	}
	if serverURL == "" {
		serverURL = sessionURL
	}
	if serverURL == "" {
		// The credential came from a flag or the environment; the
		// session file may still name the server.
		if session, err := LoadSession(); err == nil {
			serverURL = session.ServerURL
			session.Close()
		}
	}
	if serverURL == "" {
		credential.Close()
		return "", nil, Validation("no server URL configured").
			WithHint("Pass --server, set VAULTAPI_SERVER, or set server_url in the config file.")
	}

	return serverURL, credential, nil
}

// WrapClientError maps client-layer failures onto [ToolError]
// categories at the command boundary: credential rejections become
// forbidden, missing keys not_found, network trouble and 5xx
// transient. Transit protocol failures stay internal — their message
// already carries the protocol code string. Errors that are already
// categorized, and errors of unknown shape, pass through unchanged.
func WrapClientError(err error) error {
	if err == nil {
		return nil
	}
	var tool *ToolError
	if errors.As(err, &tool) {
		return err
	}

	var apiErr *vaultapi.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return Forbidden("%w", err).
				WithHint("Run \"vaultapi login\" to store a valid credential.")
		case apiErr.StatusCode == http.StatusNotFound:
			return NotFound("%w", err)
		case apiErr.StatusCode >= 500:
			return Transient("%w", err)
		default:
			return Internal("%w", err)
		}
	}

	var requestErr *vaultapi.RequestError
	if errors.As(err, &requestErr) {
		return Transient("%w", err)
	}

	var transitErr *transit.Error
	if errors.As(err, &transitErr) {
		wrapped := Internal("%w", err)
		if transitErr.Code == transit.CodeDecryptionFailed {
			wrapped.Hint = "Check clock synchronization (\"vaultapi doctor\") and that the credential matches the server."
		}
		return wrapped
	}

	return err
}
