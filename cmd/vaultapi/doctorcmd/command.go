// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package doctorcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli/doctor"
	"github.com/thevickypedia/VaultAPI-Client/lib/config"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
	"github.com/thevickypedia/VaultAPI-Client/lib/vaultapi"
)

// commandParams holds the parameters for the doctor command.
type commandParams struct {
	cli.JSONOutput
	cli.ClientParams
	Table string `json:"table" flag:"table" desc:"table for the live probe (default from config)"`
}

// Command returns the "doctor" command for diagnosing the client
// environment end-to-end.
func Command() *cli.Command {
	var params commandParams

	return &cli.Command{
		Name:    "doctor",
		Summary: "Diagnose the client environment end-to-end",
		Description: `Check the full client experience: config file, credential and session
file, server reachability, clock skew, the local crypto self-test, and
a live fetch-and-decrypt probe. Requires no flags — discovers
everything automatically and reports what's working and what's broken.

The clock skew check matters more than it looks: decryption keys
rotate on a time schedule shared with the server, so a drifted clock
turns into "decryption failed" on every fetch while everything else
looks healthy. Doctor measures the skew against the server's clock and
flags it before it costs an afternoon.

For each failure, the closing section names the command that fixes it.`,
		Usage: "vaultapi doctor [flags]",
		Examples: []cli.Example{
			{
				Description: "Check the client environment",
				Command:     "vaultapi doctor",
			},
			{
				Description: "Machine-readable output",
				Command:     "vaultapi doctor --json",
			},
			{
				Description: "Probe a specific table end-to-end",
				Command:     "vaultapi doctor --table production",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}

			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			return runDoctor(ctx, &params, logger)
		},
	}
}

// checkState accumulates discovered state across checks so later
// checks can use results from earlier ones without repeating work.
type checkState struct {
	// cfg is the loaded configuration; built-in defaults when the
	// config check failed.
	cfg *config.Config

	// configPath is where cfg came from; empty means defaults.
	configPath string

	// credential is the resolved API key, nil when none was found.
	// Owned by the client once one is built.
	credential *secret.Buffer

	// sessionURL is the server URL recorded in the session file, used
	// as the last-resort server source.
	sessionURL string

	// serverURL is the resolved server URL; empty when none found.
	serverURL string

	// client is a ready API client. With no real credential it is
	// built around a placeholder and serves only the unauthenticated
	// health probe.
	client *vaultapi.Client

	// authenticated is true when client carries a real credential.
	authenticated bool

	// health is the successful health probe's report.
	health *vaultapi.HealthReport
}

func runDoctor(ctx context.Context, params *commandParams, logger *slog.Logger) error {
	var state checkState
	var results []doctor.Result

	// Section 1: configuration.
	results = append(results, checkConfig(params.ConfigPath, &state)...)

	// Section 2: credential and session file.
	results = append(results, checkCredential(params.APIKeyFile, &state)...)

	// Section 3: server reachability.
	resolveServer(params.Server, &state)
	results = append(results, checkServer(ctx, &state, logger)...)

	// Section 4: clock skew.
	results = append(results, checkClockSkew(&state)...)

	// Section 5: transit self-test (purely local).
	results = append(results, checkTransit(&state)...)

	// Section 6: live fetch-and-decrypt probe.
	results = append(results, checkLiveProbe(ctx, params.Table, &state)...)

	// The client owns the credential buffer when one was built.
	if state.client != nil {
		state.client.Close()
	} else if state.credential != nil {
		state.credential.Close()
	}

	if done, err := params.EmitJSON(doctor.BuildJSON(results)); done {
		if err != nil {
			return err
		}
		if doctor.AnyFailed(results) {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	checklistError := doctor.PrintChecklist(os.Stdout, results)

	printGuidance(os.Stdout, results, &state)

	return checklistError
}

// --- Section 1: configuration ---

func checkConfig(explicitPath string, state *checkState) []doctor.Result {
	path := config.ResolvePath(explicitPath)

	cfg, err := config.Load(explicitPath)
	if err != nil {
		// Later checks still need transit parameters; fall back to
		// defaults so one broken file doesn't hide every other result.
		state.cfg = config.Default()
		state.configPath = path
		return []doctor.Result{doctor.Fail("config", err.Error())}
	}

	state.cfg = cfg
	state.configPath = path

	if path == "" {
		return []doctor.Result{doctor.Pass("config", "built-in defaults (no config file)")}
	}
	return []doctor.Result{doctor.Pass("config",
		fmt.Sprintf("loaded from %s (table %q, bucket %ds)", path, cfg.Table, cfg.Transit.BucketSeconds))}
}

// --- Section 2: credential and session file ---

func checkCredential(apikeyFile string, state *checkState) []doctor.Result {
	if apikeyFile != "" {
		buffer, err := secret.ReadFromPath(apikeyFile)
		if err != nil {
			return []doctor.Result{doctor.Fail("credential",
				fmt.Sprintf("cannot read --apikey-file: %v", err))}
		}
		state.credential = buffer
		return []doctor.Result{doctor.Pass("credential", "from --apikey-file "+apikeyFile)}
	}

	if buffer, ok := secret.FromEnv("VAULTAPI_KEY"); ok {
		state.credential = buffer
		return []doctor.Result{doctor.Pass("credential", "from VAULTAPI_KEY environment variable")}
	}

	sessionPath := cli.SessionFilePath()
	info, err := os.Stat(sessionPath)
	if err != nil {
		return []doctor.Result{doctor.Fail("credential",
			fmt.Sprintf("no session at %s — run \"vaultapi login <server-url>\"", sessionPath))}
	}

	var results []doctor.Result

	// The session file holds the API key in the clear; any access
	// beyond the owner is a leak.
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		results = append(results, doctor.Fail("session file mode",
			fmt.Sprintf("%s is mode %04o, want 0600 — run \"chmod 600 %s\"", sessionPath, mode, sessionPath)))
	} else {
		results = append(results, doctor.Pass("session file mode",
			fmt.Sprintf("%s is 0600", sessionPath)))
	}

	session, err := cli.LoadSession()
	if err != nil {
		results = append(results, doctor.Fail("credential", err.Error()))
		return results
	}
	state.credential = session.Credential
	state.sessionURL = session.ServerURL

	results = append(results, doctor.Pass("credential",
		fmt.Sprintf("session for %s", session.ServerURL)))
	return results
}

// --- Section 3: server reachability ---

// resolveServer fills state.serverURL from the same sources commands
// use: flag, environment, config, session.
func resolveServer(flagServer string, state *checkState) {
	switch {
	case flagServer != "":
		state.serverURL = flagServer
	case os.Getenv("VAULTAPI_SERVER") != "":
		state.serverURL = os.Getenv("VAULTAPI_SERVER")
	case state.cfg.ServerURL != "":
		state.serverURL = state.cfg.ServerURL
	default:
		state.serverURL = state.sessionURL
	}
}

func checkServer(ctx context.Context, state *checkState, logger *slog.Logger) []doctor.Result {
	if state.serverURL == "" {
		return []doctor.Result{doctor.Fail("server reachable",
			"no server URL configured — pass --server, set VAULTAPI_SERVER, or run \"vaultapi login\"")}
	}

	// The health endpoint is unauthenticated, so a missing credential
	// doesn't block this check: a placeholder stands in and never
	// leaves the process.
	credential := state.credential
	state.authenticated = credential != nil
	if credential == nil {
		placeholder, err := secret.NewFromString("doctor-health-probe")
		if err != nil {
			return []doctor.Result{doctor.Fail("server reachable",
				fmt.Sprintf("cannot allocate probe buffer: %v", err))}
		}
		credential = placeholder
	}

	client, err := vaultapi.NewClient(vaultapi.ClientConfig{
		ServerURL:             state.serverURL,
		Credential:            credential,
		HTTPClient:            &http.Client{Timeout: state.cfg.RequestTimeout()},
		Logger:                logger,
		Transit:               state.cfg.TransitParams(),
		DecryptPreviousBucket: state.cfg.DecryptPreviousBucket,
	})
	if err != nil {
		credential.Close()
		state.credential = nil
		state.authenticated = false
		return []doctor.Result{doctor.Fail("server reachable",
			fmt.Sprintf("cannot construct client for %q: %v", state.serverURL, err))}
	}
	state.client = client

	report, err := client.Health(ctx)
	if err != nil {
		return []doctor.Result{doctor.Fail("server reachable",
			fmt.Sprintf("%s unreachable: %v", state.serverURL, err))}
	}
	state.health = report

	message := state.serverURL
	if report.Detail != "" {
		message = fmt.Sprintf("%s (%s)", state.serverURL, report.Detail)
	}
	return []doctor.Result{doctor.Pass("server reachable", message)}
}

// --- Section 4: clock skew ---

// skewWarnThreshold is the skew beyond which decrypts near bucket
// boundaries start failing intermittently.
const skewWarnThreshold = 10 * time.Second

func checkClockSkew(state *checkState) []doctor.Result {
	if state.health == nil {
		return []doctor.Result{doctor.Skip("clock skew", "skipped: server not reachable")}
	}
	if state.health.ServerTime.IsZero() {
		return []doctor.Result{doctor.Warn("clock skew",
			"server sent no Date header; skew cannot be measured")}
	}

	skew := time.Since(state.health.ServerTime)
	if skew < 0 {
		skew = -skew
	}
	bucketWidth := time.Duration(state.cfg.TransitParams().BucketSeconds) * time.Second

	switch {
	case skew > bucketWidth:
		return []doctor.Result{doctor.Fail("clock skew",
			fmt.Sprintf("local clock is %s off the server's — beyond the %s key rotation window, every decrypt will fail",
				skew.Round(time.Second), bucketWidth))}
	case skew > skewWarnThreshold:
		return []doctor.Result{doctor.Warn("clock skew",
			fmt.Sprintf("local clock is %s off the server's — decrypts near rotation boundaries may fail",
				skew.Round(time.Second)))}
	default:
		return []doctor.Result{doctor.Pass("clock skew",
			fmt.Sprintf("local clock within %s of the server's", skew.Round(time.Second)))}
	}
}

// --- Section 5: transit self-test ---

// selfTestTime is a fixed instant for the encrypt/decrypt round trip,
// so the self-test result does not depend on the wall clock.
var selfTestTime = time.Unix(1700000000, 0)

func checkTransit(state *checkState) []doctor.Result {
	params := state.cfg.TransitParams()

	credential, err := secret.NewFromString("doctor-self-test-credential")
	if err != nil {
		return []doctor.Result{doctor.Fail("transit self-test",
			fmt.Sprintf("cannot allocate test credential: %v", err))}
	}
	defer credential.Close()

	envelope, err := transit.Encrypt(map[string]any{"probe": "ok"}, credential, selfTestTime, params)
	if err != nil {
		return []doctor.Result{doctor.Fail("transit self-test",
			fmt.Sprintf("encrypt failed: %v", err))}
	}

	value, err := transit.Decrypt(envelope, credential, selfTestTime, params)
	if err != nil {
		return []doctor.Result{doctor.Fail("transit self-test",
			fmt.Sprintf("decrypt failed: %v", err))}
	}

	object, ok := value.Map()
	if !ok || object["probe"] != "ok" {
		return []doctor.Result{doctor.Fail("transit self-test",
			"round trip altered the payload")}
	}

	return []doctor.Result{doctor.Pass("transit self-test",
		fmt.Sprintf("encrypt/decrypt round trip (key length %d, bucket %ds)",
			params.KeyLength, params.BucketSeconds))}
}

// --- Section 6: live probe ---

func checkLiveProbe(ctx context.Context, flagTable string, state *checkState) []doctor.Result {
	if state.client == nil || !state.authenticated {
		return []doctor.Result{doctor.Skip("live probe",
			"skipped: no server connection with a credential")}
	}

	table := flagTable
	if table == "" {
		table = state.cfg.Table
	}
	if table == "" {
		return []doctor.Result{doctor.Skip("live probe",
			"skipped: no table configured (pass --table or set one in config)")}
	}

	value, err := state.client.GetTable(ctx, table)
	if err != nil {
		return []doctor.Result{liveProbeFailure(table, err)}
	}

	return []doctor.Result{doctor.Pass("live probe",
		fmt.Sprintf("fetched and decrypted table %q (fingerprint %s)", table, value.Fingerprint()))}
}

// liveProbeFailure classifies a probe error into a result whose
// message names the actual failure layer.
func liveProbeFailure(table string, err error) doctor.Result {
	if vaultapi.IsAPIError(err, http.StatusUnauthorized, http.StatusForbidden) {
		return doctor.Fail("live probe",
			"server rejected the credential — run \"vaultapi login <server-url>\"")
	}
	if vaultapi.IsAPIError(err, http.StatusNotFound) {
		// The server authorizes before it looks up tables, so a 404
		// still proves the credential works.
		return doctor.Warn("live probe",
			fmt.Sprintf("table %q does not exist (the credential was accepted)", table))
	}
	return doctor.Fail("live probe",
		fmt.Sprintf("fetching table %q: %v", table, err))
}

// --- Guidance ---

// printGuidance prints a "next steps" section after the checklist when
// there are failures. Each failure domain gets a specific actionable
// command.
func printGuidance(w io.Writer, results []doctor.Result, state *checkState) {
	type guidance struct {
		command     string
		description string
	}

	var steps []guidance
	seen := make(map[string]bool)

	addStep := func(command, description string) {
		if seen[command] {
			return
		}
		seen[command] = true
		steps = append(steps, guidance{command, description})
	}

	anyFailed := false
	for _, result := range results {
		if result.Status != doctor.StatusFail {
			continue
		}
		anyFailed = true

		switch result.Name {
		case "config":
			path := state.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			addStep("$EDITOR "+path, "Fix the config file (the error above names the problem)")
		case "credential":
			addStep("vaultapi login <server-url>", "Authenticate and save a session")
		case "session file mode":
			addStep("chmod 600 "+cli.SessionFilePath(), "Restrict the session file to its owner")
		case "server reachable":
			if state.serverURL == "" {
				addStep("vaultapi login <server-url>", "Authenticate and save a session")
			} else {
				addStep("curl -fsS "+state.serverURL+"/health", "Check the URL and that the vault server is running")
			}
		case "clock skew":
			addStep("timedatectl set-ntp true", "Enable NTP time synchronization")
		case "transit self-test":
			addStep("vaultapi version", "Include this output in a bug report — the self-test should never fail")
		case "live probe":
			addStep("vaultapi login <server-url>", "Authenticate and save a session")
			addStep("timedatectl set-ntp true", "Enable NTP time synchronization")
		}
	}

	if !anyFailed || len(steps) == 0 {
		return
	}

	fmt.Fprintln(w, "Next steps:")
	maxCommandLength := 0
	for _, step := range steps {
		if len(step.command) > maxCommandLength {
			maxCommandLength = len(step.command)
		}
	}
	for _, step := range steps {
		fmt.Fprintf(w, "  %-*s  %s\n", maxCommandLength, step.command, step.description)
	}
}
