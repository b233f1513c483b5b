// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package doctorcmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli"
	"github.com/thevickypedia/VaultAPI-Client/cmd/vaultapi/cli/doctor"
	"github.com/thevickypedia/VaultAPI-Client/lib/clock"
	"github.com/thevickypedia/VaultAPI-Client/lib/config"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
	"github.com/thevickypedia/VaultAPI-Client/lib/vaultapi"
)

const testAPIKey = "doctor-test-api-key"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// isolateEnvironment points every discovery path at empty locations so
// checks see only what the test sets up.
func isolateEnvironment(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("VAULTAPI_CONFIG", "")
	t.Setenv("VAULTAPI_KEY", "")
	t.Setenv("VAULTAPI_SERVER", "")
	t.Setenv("VAULTAPI_SESSION_FILE", filepath.Join(t.TempDir(), "session.json"))
}

// --- Section 1: configuration ---

func TestCheckConfig_Defaults(t *testing.T) {
	isolateEnvironment(t)

	var state checkState
	results := checkConfig("", &state)

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if !strings.Contains(results[0].Message, "defaults") {
		t.Errorf("message = %q, want mention of defaults", results[0].Message)
	}
	if state.cfg == nil || state.cfg.Table != "default" {
		t.Errorf("state.cfg not seeded with defaults: %+v", state.cfg)
	}
}

func TestCheckConfig_ValidFile(t *testing.T) {
	isolateEnvironment(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "server_url: https://vault.internal:8080\ntable: production\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	var state checkState
	results := checkConfig(path, &state)

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if !strings.Contains(results[0].Message, path) {
		t.Errorf("message = %q, want config path", results[0].Message)
	}
	if state.cfg.Table != "production" {
		t.Errorf("table = %q, want production", state.cfg.Table)
	}
	if state.configPath != path {
		t.Errorf("configPath = %q, want %q", state.configPath, path)
	}
}

func TestCheckConfig_BrokenFile(t *testing.T) {
	isolateEnvironment(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server_url: [not a scalar\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var state checkState
	results := checkConfig(path, &state)

	if len(results) != 1 || results[0].Status != doctor.StatusFail {
		t.Fatalf("results = %+v, want one FAIL", results)
	}
	// Later checks still need parameters.
	if state.cfg == nil || state.cfg.Transit.BucketSeconds != transit.DefaultBucketSeconds {
		t.Errorf("state.cfg not seeded with defaults after parse failure: %+v", state.cfg)
	}
}

// --- Section 2: credential and session file ---

func TestCheckCredential_FromEnvironment(t *testing.T) {
	isolateEnvironment(t)
	t.Setenv("VAULTAPI_KEY", testAPIKey)

	var state checkState
	results := checkCredential("", &state)

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if !strings.Contains(results[0].Message, "VAULTAPI_KEY") {
		t.Errorf("message = %q, want source named", results[0].Message)
	}
	if state.credential == nil {
		t.Fatal("state.credential not set")
	}
	state.credential.Close()
}

func TestCheckCredential_NoSession(t *testing.T) {
	isolateEnvironment(t)

	var state checkState
	results := checkCredential("", &state)

	if len(results) != 1 || results[0].Status != doctor.StatusFail {
		t.Fatalf("results = %+v, want one FAIL", results)
	}
	if !strings.Contains(results[0].Message, "vaultapi login") {
		t.Errorf("message = %q, want login guidance", results[0].Message)
	}
}

func TestCheckCredential_SessionFile(t *testing.T) {
	isolateEnvironment(t)
	sessionPath := os.Getenv("VAULTAPI_SESSION_FILE")

	credential, err := secret.NewFromString(testAPIKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := cli.SaveSessionTo("https://vault.internal:8080", credential, sessionPath); err != nil {
		t.Fatal(err)
	}
	credential.Close()

	var state checkState
	results := checkCredential("", &state)

	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2 (mode + credential): %+v", len(results), results)
	}
	if results[0].Name != "session file mode" || results[0].Status != doctor.StatusPass {
		t.Errorf("mode result = %+v, want PASS", results[0])
	}
	if results[1].Name != "credential" || results[1].Status != doctor.StatusPass {
		t.Errorf("credential result = %+v, want PASS", results[1])
	}
	if state.sessionURL != "https://vault.internal:8080" {
		t.Errorf("sessionURL = %q", state.sessionURL)
	}
	if state.credential == nil {
		t.Fatal("state.credential not set")
	}
	state.credential.Close()
}

func TestCheckCredential_SessionModeTooOpen(t *testing.T) {
	isolateEnvironment(t)
	sessionPath := os.Getenv("VAULTAPI_SESSION_FILE")

	credential, err := secret.NewFromString(testAPIKey)
	if err != nil {
		t.Fatal(err)
	}
	if err := cli.SaveSessionTo("https://vault.internal:8080", credential, sessionPath); err != nil {
		t.Fatal(err)
	}
	credential.Close()
	if err := os.Chmod(sessionPath, 0o644); err != nil {
		t.Fatal(err)
	}

	var state checkState
	results := checkCredential("", &state)

	if len(results) != 2 {
		t.Fatalf("result count = %d, want 2: %+v", len(results), results)
	}
	if results[0].Status != doctor.StatusFail {
		t.Errorf("mode result = %+v, want FAIL", results[0])
	}
	if !strings.Contains(results[0].Message, "chmod 600") {
		t.Errorf("mode message = %q, want chmod guidance", results[0].Message)
	}
	// The credential still loads; the mode failure stands on its own.
	if results[1].Status != doctor.StatusPass {
		t.Errorf("credential result = %+v, want PASS", results[1])
	}
	if state.credential != nil {
		state.credential.Close()
	}
}

// --- Section 3: server resolution and reachability ---

func TestResolveServerPrecedence(t *testing.T) {
	isolateEnvironment(t)
	t.Setenv("VAULTAPI_SERVER", "https://from-env:1")

	state := checkState{
		cfg:        &config.Config{ServerURL: "https://from-config:1"},
		sessionURL: "https://from-session:1",
	}

	resolveServer("https://from-flag:1", &state)
	if state.serverURL != "https://from-flag:1" {
		t.Errorf("flag should win, got %q", state.serverURL)
	}

	resolveServer("", &state)
	if state.serverURL != "https://from-env:1" {
		t.Errorf("env should win over config, got %q", state.serverURL)
	}

	t.Setenv("VAULTAPI_SERVER", "")
	resolveServer("", &state)
	if state.serverURL != "https://from-config:1" {
		t.Errorf("config should win over session, got %q", state.serverURL)
	}

	state.cfg.ServerURL = ""
	resolveServer("", &state)
	if state.serverURL != "https://from-session:1" {
		t.Errorf("session is the last resort, got %q", state.serverURL)
	}
}

func TestCheckServer_NoURL(t *testing.T) {
	isolateEnvironment(t)
	state := checkState{cfg: config.Default()}

	results := checkServer(context.Background(), &state, testLogger())

	if len(results) != 1 || results[0].Status != doctor.StatusFail {
		t.Fatalf("results = %+v, want one FAIL", results)
	}
}

func TestCheckServer_Healthy(t *testing.T) {
	isolateEnvironment(t)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/health" {
			http.NotFound(writer, request)
			return
		}
		json.NewEncoder(writer).Encode(map[string]string{"detail": "OK"})
	}))
	defer server.Close()

	state := checkState{cfg: config.Default(), serverURL: server.URL}
	results := checkServer(context.Background(), &state, testLogger())
	t.Cleanup(func() {
		if state.client != nil {
			state.client.Close()
		}
	})

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if state.health == nil {
		t.Fatal("state.health not recorded")
	}
	// net/http sets the Date header on every response; the probe
	// parses it into ServerTime.
	if state.health.ServerTime.IsZero() {
		t.Error("ServerTime not parsed from the Date header")
	}
	// Without a credential the client exists for /health only.
	if state.authenticated {
		t.Error("authenticated = true without a credential")
	}
}

func TestCheckServer_Unreachable(t *testing.T) {
	isolateEnvironment(t)
	server := httptest.NewServer(http.NotFoundHandler())
	unreachable := server.URL
	server.Close()

	state := checkState{cfg: config.Default(), serverURL: unreachable}
	results := checkServer(context.Background(), &state, testLogger())
	t.Cleanup(func() {
		if state.client != nil {
			state.client.Close()
		}
	})

	if len(results) != 1 || results[0].Status != doctor.StatusFail {
		t.Fatalf("results = %+v, want one FAIL", results)
	}
	if !strings.Contains(results[0].Message, "unreachable") {
		t.Errorf("message = %q", results[0].Message)
	}
}

// --- Section 4: clock skew ---

func TestCheckClockSkew(t *testing.T) {
	cfg := config.Default() // 60-second buckets

	tests := []struct {
		name   string
		state  checkState
		want   doctor.Status
		phrase string
	}{
		{
			name:  "server unreachable",
			state: checkState{cfg: cfg},
			want:  doctor.StatusSkip,
		},
		{
			name:   "no date header",
			state:  checkState{cfg: cfg, health: &vaultapi.HealthReport{}},
			want:   doctor.StatusWarn,
			phrase: "Date header",
		},
		{
			name: "in sync",
			state: checkState{cfg: cfg, health: &vaultapi.HealthReport{
				ServerTime: time.Now(),
			}},
			want: doctor.StatusPass,
		},
		{
			name: "moderate skew warns",
			state: checkState{cfg: cfg, health: &vaultapi.HealthReport{
				ServerTime: time.Now().Add(-30 * time.Second),
			}},
			want:   doctor.StatusWarn,
			phrase: "boundaries",
		},
		{
			name: "skew beyond bucket width fails",
			state: checkState{cfg: cfg, health: &vaultapi.HealthReport{
				ServerTime: time.Now().Add(5 * time.Minute),
			}},
			want:   doctor.StatusFail,
			phrase: "every decrypt will fail",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			results := checkClockSkew(&test.state)
			if len(results) != 1 {
				t.Fatalf("result count = %d, want 1", len(results))
			}
			if results[0].Status != test.want {
				t.Errorf("status = %s, want %s (message: %s)",
					results[0].Status, test.want, results[0].Message)
			}
			if test.phrase != "" && !strings.Contains(results[0].Message, test.phrase) {
				t.Errorf("message = %q, want phrase %q", results[0].Message, test.phrase)
			}
		})
	}
}

// --- Section 5: transit self-test ---

func TestCheckTransit(t *testing.T) {
	state := checkState{cfg: config.Default()}
	results := checkTransit(&state)

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if !strings.Contains(results[0].Message, "key length 32") {
		t.Errorf("message = %q, want parameters named", results[0].Message)
	}
}

func TestCheckTransit_CustomParameters(t *testing.T) {
	cfg := config.Default()
	cfg.Transit.KeyLength = 16
	cfg.Transit.BucketSeconds = 300

	state := checkState{cfg: cfg}
	results := checkTransit(&state)

	if results[0].Status != doctor.StatusPass {
		t.Fatalf("result = %+v, want PASS", results[0])
	}
	if !strings.Contains(results[0].Message, "key length 16") || !strings.Contains(results[0].Message, "300s") {
		t.Errorf("message = %q, want custom parameters named", results[0].Message)
	}
}

// --- Section 6: live probe ---

// probeTime pins the client clock so the probe's decrypt bucket never
// races a rotation boundary during the test.
var probeTime = time.Unix(1756000000, 0)

// liveProbeState builds a connected, authenticated state against a
// test server.
func liveProbeState(t *testing.T, serverURL string) *checkState {
	t.Helper()
	credential, err := secret.NewFromString(testAPIKey)
	if err != nil {
		t.Fatal(err)
	}
	client, err := vaultapi.NewClient(vaultapi.ClientConfig{
		ServerURL:  serverURL,
		Credential: credential,
		Logger:     testLogger(),
		Clock:      clock.Fake(probeTime),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(client.Close)

	return &checkState{
		cfg:           config.Default(),
		serverURL:     serverURL,
		credential:    credential,
		client:        client,
		authenticated: true,
	}
}

func TestCheckLiveProbe_EndToEnd(t *testing.T) {
	credential, err := secret.NewFromString(testAPIKey)
	if err != nil {
		t.Fatal(err)
	}
	defer credential.Close()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/get-table" {
			http.NotFound(writer, request)
			return
		}
		envelope, sealErr := transit.Encrypt(
			map[string]any{"db_password": "hunter2"},
			credential, probeTime, transit.Params{},
		)
		if sealErr != nil {
			t.Errorf("sealing table: %v", sealErr)
			return
		}
		json.NewEncoder(writer).Encode(map[string]string{"detail": envelope})
	}))
	defer server.Close()

	state := liveProbeState(t, server.URL)
	results := checkLiveProbe(context.Background(), "", state)

	if len(results) != 1 || results[0].Status != doctor.StatusPass {
		t.Fatalf("results = %+v, want one PASS", results)
	}
	if strings.Contains(results[0].Message, "hunter2") {
		t.Errorf("message leaks the secret value: %q", results[0].Message)
	}
	if !strings.Contains(results[0].Message, "fingerprint") {
		t.Errorf("message = %q, want fingerprint", results[0].Message)
	}
}

func TestCheckLiveProbe_RejectedCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(writer).Encode(map[string]string{"detail": "Invalid authentication token"})
	}))
	defer server.Close()

	state := liveProbeState(t, server.URL)
	results := checkLiveProbe(context.Background(), "", state)

	if results[0].Status != doctor.StatusFail {
		t.Fatalf("result = %+v, want FAIL", results[0])
	}
	if !strings.Contains(results[0].Message, "vaultapi login") {
		t.Errorf("message = %q, want login guidance", results[0].Message)
	}
}

func TestCheckLiveProbe_MissingTableWarns(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusNotFound)
		json.NewEncoder(writer).Encode(map[string]string{"detail": "Table not found"})
	}))
	defer server.Close()

	state := liveProbeState(t, server.URL)
	results := checkLiveProbe(context.Background(), "missing", state)

	if results[0].Status != doctor.StatusWarn {
		t.Fatalf("result = %+v, want WARN", results[0])
	}
	if !strings.Contains(results[0].Message, "credential was accepted") {
		t.Errorf("message = %q", results[0].Message)
	}
}

func TestCheckLiveProbe_WrongServerCredential(t *testing.T) {
	// The server encrypts with a different credential: the fetch
	// succeeds, the local decrypt fails. This is the clock-or-key
	// failure mode the probe exists to surface.
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		other, err := secret.NewFromString("a-different-server-credential")
		if err != nil {
			t.Error(err)
			return
		}
		defer other.Close()
		envelope, sealErr := transit.Encrypt(map[string]any{"key": "value"}, other, probeTime, transit.Params{})
		if sealErr != nil {
			t.Error(sealErr)
			return
		}
		json.NewEncoder(writer).Encode(map[string]string{"detail": envelope})
	}))
	defer server.Close()

	state := liveProbeState(t, server.URL)
	results := checkLiveProbe(context.Background(), "", state)

	if results[0].Status != doctor.StatusFail {
		t.Fatalf("result = %+v, want FAIL", results[0])
	}
}

func TestCheckLiveProbe_SkipsWithoutClient(t *testing.T) {
	state := checkState{cfg: config.Default()}
	results := checkLiveProbe(context.Background(), "", &state)

	if results[0].Status != doctor.StatusSkip {
		t.Fatalf("result = %+v, want SKIP", results[0])
	}
}

// --- Guidance ---

func TestPrintGuidanceDeduplicates(t *testing.T) {
	state := checkState{cfg: config.Default(), serverURL: "https://vault.internal:8080"}
	results := []doctor.Result{
		doctor.Fail("credential", "no session"),
		doctor.Fail("live probe", "server rejected the credential"),
		doctor.Pass("config", "defaults"),
	}

	var buf strings.Builder
	printGuidance(&buf, results, &state)

	output := buf.String()
	if !strings.Contains(output, "Next steps:") {
		t.Fatalf("output missing header:\n%s", output)
	}
	if got := strings.Count(output, "vaultapi login <server-url>"); got != 1 {
		t.Errorf("login step appears %d times, want 1:\n%s", got, output)
	}
}

func TestPrintGuidanceSilentWhenHealthy(t *testing.T) {
	state := checkState{cfg: config.Default()}
	results := []doctor.Result{
		doctor.Pass("config", "defaults"),
		doctor.Warn("clock skew", "11s off"),
	}

	var buf strings.Builder
	printGuidance(&buf, results, &state)

	if buf.Len() != 0 {
		t.Errorf("guidance printed without failures:\n%s", buf.String())
	}
}
