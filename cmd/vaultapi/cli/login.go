// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/thevickypedia/VaultAPI-Client/lib/config"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
	"github.com/thevickypedia/VaultAPI-Client/lib/vaultapi"
)

// loginParams holds the parameters for the login command.
type loginParams struct {
	APIKeyFile string `json:"-" flag:"apikey-file" desc:"path to file containing the API key, or - for stdin (default: prompt)"`
	ConfigPath string `json:"-" flag:"config"      desc:"path to config file"`
}

// LoginCommand returns the "login" command. It verifies the credential
// against the server and saves the session to the well-known path
// (~/.config/vaultapi/session.json). Subsequent commands (get, table,
// export) load this session transparently, like SSH keys.
func LoginCommand() *Command {
	var params loginParams

	return &Command{
		Name:    "login",
		Summary: "Verify a credential and save the session",
		Description: `Log in to a vault server and save the session locally.

After login, commands like "vaultapi get" and "vaultapi export" use the
saved session transparently — no flags needed. This is the equivalent
of SSH keys: authenticate once, then access is seamless.

The session file is stored at ~/.config/vaultapi/session.json (or
$VAULTAPI_SESSION_FILE if set, or $XDG_CONFIG_HOME/vaultapi/session.json).
The file is written with mode 0600 (owner-only read/write) since it
contains the API key.

The key can be provided via --apikey-file (a path, or "-" for stdin),
the VAULTAPI_KEY environment variable, or an interactive prompt with
echo disabled. The credential is verified against the server before
anything is saved: first /health (is the server there at all), then an
authenticated fetch (does it accept this key).`,
		Usage: "vaultapi login <server-url> [flags]",
		Examples: []Example{
			{
				Description: "Log in interactively (prompts for the API key)",
				Command:     "vaultapi login https://vault.example.com:8080",
			},
			{
				Description: "Log in with the key from a file",
				Command:     "vaultapi login https://vault.example.com:8080 --apikey-file /path/to/key",
			},
			{
				Description: "Log in from a pipeline",
				Command:     "echo \"$KEY\" | vaultapi login https://vault.example.com:8080 --apikey-file -",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) < 1 {
				return Validation("server URL is required\n\nUsage: vaultapi login <server-url> [flags]")
			}
			serverURL := strings.TrimRight(args[0], "/")
			if len(args) > 1 {
				return Validation("unexpected argument: %s", args[1])
			}

			cfg, err := config.Load(params.ConfigPath)
			if err != nil {
				return Validation("%w", err)
			}

			credential, err := loginCredential(params.APIKeyFile)
			if err != nil {
				return err
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
				return Validation("%w", err)
			}
			defer client.Close()

			// Reachability first, so "wrong URL" and "wrong key" fail
			// with distinct messages.
			if _, err := client.Health(ctx); err != nil {
				return Transient("server %s is not reachable: %w", serverURL, err).
					WithHint("Check the URL and that the vault server is running.")
			}

			// Authenticated probe. A 404 still proves the credential:
			// the server checks authorization before looking up tables.
			if _, err := client.GetTable(ctx, cfg.Table); err != nil {
				if vaultapi.IsAPIError(err, http.StatusUnauthorized, http.StatusForbidden) {
					return Forbidden("server rejected the API key: %w", err)
				}
				if !vaultapi.IsAPIError(err, http.StatusNotFound) {
					return WrapClientError(err)
				}
			}

			// The buffer is still alive here: client.Close runs on
			// defer, after the session is written.
			if err := SaveSession(serverURL, credential); err != nil {
				return Internal("save session: %w", err)
			}

			fmt.Fprintf(os.Stderr, "Logged in to %s\n", serverURL)
			fmt.Fprintf(os.Stderr, "Session saved to %s\n", SessionFilePath())
			return nil
		},
	}
}

// loginCredential resolves the key for login: explicit file, then the
// environment, then an interactive prompt. Login never consults the
// session file — it exists to create it.
func loginCredential(apikeyFile string) (*secret.Buffer, error) {
	if apikeyFile != "" {
		buffer, err := secret.ReadFromPath(apikeyFile)
		if err != nil {
			return nil, Validation("reading API key from %s: %w", apikeyFile, err)
		}
		return buffer, nil
	}
	if buffer, ok := secret.FromEnv("VAULTAPI_KEY"); ok {
		return buffer, nil
	}
	return PromptSecret("API key")
}
