// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package vaultapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/lib/clock"
	"github.com/thevickypedia/VaultAPI-Client/lib/netutil"
	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
)

// defaultTimeout bounds requests when the caller supplies no
// http.Client. Vault responses are small; anything slower than this
// is a stuck connection, not a slow payload.
const defaultTimeout = 30 * time.Second

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the VaultAPI server
	// (e.g., "https://vault.example.com:8080").
	ServerURL string
	// Credential is the API key: bearer token and decryption input.
	// The Client takes ownership and closes it on Close.
	Credential *secret.Buffer
	// HTTPClient is used for all requests. If nil, a client with a
	// 30-second timeout is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, logs are
	// discarded; no log line ever contains secret material either way.
	Logger *slog.Logger
	// Clock supplies the time for bucketed key derivation. If nil,
	// the system clock is used.
	Clock clock.Clock
	// Transit overrides the protocol parameters. The zero value means
	// the defaults (32-byte keys, 60-second buckets); both sides must
	// agree.
	Transit transit.Params
	// DecryptPreviousBucket opts in to a single decrypt retry with
	// the previous bucket's key when a response lands within the
	// first two seconds of a fresh bucket. Off by default: the
	// baseline behavior at a boundary is deterministic failure.
	DecryptPreviousBucket bool
}

// Client is a VaultAPI client. It is safe for concurrent use: all
// configuration is immutable after construction and operations share
// one http.Client.
type Client struct {
	baseURL               string
	credential            *secret.Buffer
	httpClient            *http.Client
	logger                *slog.Logger
	clock                 clock.Clock
	transit               transit.Params
	decryptPreviousBucket bool
}

// NewClient creates a Client. The credential buffer is owned by the
// returned Client; call Close to release it.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, fmt.Errorf("vaultapi: ServerURL is required")
	}
	parsed, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("vaultapi: invalid ServerURL %q: %w", config.ServerURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("vaultapi: ServerURL %q must use http or https", config.ServerURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("vaultapi: ServerURL %q has no host", config.ServerURL)
	}
	if config.Credential == nil {
		return nil, fmt.Errorf("vaultapi: Credential is required")
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	// Normalize the transit params once so the retry window math in
	// decryptEnvelope can rely on a concrete bucket width.
	params := config.Transit
	if params.KeyLength == 0 {
		params.KeyLength = transit.DefaultKeyLength
	}
	if params.BucketSeconds == 0 {
		params.BucketSeconds = transit.DefaultBucketSeconds
	}

	return &Client{
		baseURL:               strings.TrimRight(config.ServerURL, "/"),
		credential:            config.Credential,
		httpClient:            httpClient,
		logger:                logger,
		clock:                 clk,
		transit:               params,
		decryptPreviousBucket: config.DecryptPreviousBucket,
	}, nil
}

// Close releases the credential's protected memory. The Client is
// unusable afterwards.
func (c *Client) Close() {
	c.credential.Close()
}

// CloseIdleConnections closes idle HTTP connections in the underlying
// transport's connection pool. Call this after a network disruption
// to force subsequent requests to establish fresh TCP connections
// instead of reusing a poisoned pooled connection.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// doRequest performs an authenticated request and returns the
// response body. On 2xx, returns the body. On any other status,
// returns an *APIError; on transport failure, a *RequestError.
// query may be nil for endpoints without query parameters.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, requestBody any) ([]byte, error) {
	endpoint := method + " " + path

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("vaultapi: failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("vaultapi: failed to create request: %w", err)
	}

	// The credential leaves protected memory only here, into the
	// header of an in-flight request.
	request.Header.Set("Authorization", "Bearer "+c.credential.String())
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, cause: err}
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("vaultapi: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}
	return nil, statusError(endpoint, response.StatusCode, responseBody)
}

// statusError builds the APIError for a non-2xx response. Error
// bodies are usually {"detail": "..."}; fall back to a bounded body
// excerpt when they are not.
func statusError(endpoint string, statusCode int, body []byte) *APIError {
	var parsed struct {
		Detail string `json:"detail"`
	}
	detail := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		detail = parsed.Detail
	}
	if detail == "" {
		detail = excerpt(body)
	}
	return &APIError{StatusCode: statusCode, Detail: detail, Endpoint: endpoint}
}

// excerpt bounds a response body for inclusion in an error message.
func excerpt(body []byte) string {
	const limit = 200
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "(empty body)"
	}
	if len(text) > limit {
		return text[:limit] + "..."
	}
	return text
}
