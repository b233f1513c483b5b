// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package vaultapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/lib/netutil"
)

// HealthReport is the outcome of a successful health probe.
type HealthReport struct {
	// Detail is the server's health message.
	Detail string
	// ServerTime is the server's wall clock, parsed from the Date
	// response header. Zero when the server sent none. The doctor
	// command compares it against the local clock: skew beyond the
	// bucket width makes every decrypt fail.
	ServerTime time.Time
}

// Health probes the server's health endpoint. It is the one
// unauthenticated operation: it neither sends the credential nor
// decrypts anything, so it isolates "server unreachable" from
// credential and clock problems.
func (c *Client) Health(ctx context.Context) (*HealthReport, error) {
	const endpoint = "GET /health"

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("vaultapi: failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, &RequestError{Endpoint: endpoint, cause: err}
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("vaultapi: failed to read response body: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, statusError(endpoint, response.StatusCode, body)
	}

	report := &HealthReport{Detail: excerpt(body)}
	if date := response.Header.Get("Date"); date != "" {
		if serverTime, err := http.ParseTime(date); err == nil {
			report.ServerTime = serverTime
		}
	}
	return report, nil
}
