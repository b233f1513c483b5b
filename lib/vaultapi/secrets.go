// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package vaultapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/thevickypedia/VaultAPI-Client/lib/payload"
	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
)

// previousBucketWindowSeconds is how far into a fresh bucket the
// opt-in previous-bucket retry applies. Past this, a decrypt failure
// is a real failure, not boundary drift.
const previousBucketWindowSeconds = 2

// GetSecret retrieves and decrypts a single secret from a table.
func (c *Client) GetSecret(ctx context.Context, table, key string) (*payload.Value, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("vaultapi: key is required")
	}

	query := url.Values{}
	query.Set("key", key)
	query.Set("table_name", table)
	value, err := c.fetchEnvelope(ctx, "/get-secret", query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("secret retrieved", "table", table, "key", key)
	return value, nil
}

// GetSecrets retrieves and decrypts several secrets from a table in
// one request. The decrypted payload is an object keyed by secret
// name; keys absent from the table are absent from the payload.
func (c *Client) GetSecrets(ctx context.Context, table string, keys []string) (*payload.Value, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("vaultapi: at least one key is required")
	}
	for _, key := range keys {
		if key == "" {
			return nil, fmt.Errorf("vaultapi: key names must be non-empty")
		}
		if strings.Contains(key, ",") {
			return nil, fmt.Errorf("vaultapi: key %q contains a comma, which the wire format reserves as the separator", key)
		}
	}

	query := url.Values{}
	query.Set("keys", strings.Join(keys, ","))
	query.Set("table_name", table)
	value, err := c.fetchEnvelope(ctx, "/get-secrets", query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("secrets retrieved", "table", table, "count", len(keys))
	return value, nil
}

// GetTable retrieves and decrypts every secret in a table. The
// decrypted payload is an object keyed by secret name.
func (c *Client) GetTable(ctx context.Context, table string) (*payload.Value, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("table_name", table)
	value, err := c.fetchEnvelope(ctx, "/get-table", query)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("table retrieved", "table", table)
	return value, nil
}

// putSecretsRequest is the PUT /put-secret body. Values travel as
// plaintext JSON over TLS; encryption at rest is the server's job.
type putSecretsRequest struct {
	TableName string            `json:"table_name"`
	Secrets   map[string]string `json:"secrets"`
}

// PutSecrets stores secrets in a table, creating the table and
// overwriting existing keys as needed.
func (c *Client) PutSecrets(ctx context.Context, table string, secrets map[string]string) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if len(secrets) == 0 {
		return fmt.Errorf("vaultapi: at least one secret is required")
	}
	for key := range secrets {
		if key == "" {
			return fmt.Errorf("vaultapi: secret names must be non-empty")
		}
	}

	body := putSecretsRequest{TableName: table, Secrets: secrets}
	if _, err := c.doRequest(ctx, http.MethodPut, "/put-secret", nil, body); err != nil {
		return err
	}
	c.logger.Debug("secrets stored", "table", table, "count", len(secrets))
	return nil
}

// DeleteSecret removes a single secret from a table.
func (c *Client) DeleteSecret(ctx context.Context, table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("vaultapi: key is required")
	}

	query := url.Values{}
	query.Set("key", key)
	query.Set("table_name", table)
	if _, err := c.doRequest(ctx, http.MethodDelete, "/delete-secret", query, nil); err != nil {
		return err
	}
	c.logger.Debug("secret deleted", "table", table, "key", key)
	return nil
}

// validateTable rejects a missing table name before any I/O. Every
// secret operation is scoped to a table; there is no default on the
// wire.
func validateTable(table string) error {
	if table == "" {
		return fmt.Errorf("vaultapi: table name is required")
	}
	return nil
}

// fetchEnvelope performs a GET, unwraps the transit envelope from the
// response's "detail" field, and decrypts it.
func (c *Client) fetchEnvelope(ctx context.Context, path string, query url.Values) (*payload.Value, error) {
	endpoint := http.MethodGet + " " + path
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	envelope, err := unwrapDetail(endpoint, body)
	if err != nil {
		return nil, err
	}
	return c.decryptEnvelope(envelope)
}

// unwrapDetail extracts the transit envelope from a 2xx response.
// The contract is {"detail": "<base64 envelope>"}; anything else is a
// retrieval failure, not a decrypt failure.
func unwrapDetail(endpoint string, body []byte) (string, error) {
	var response struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &APIError{
			StatusCode: http.StatusOK,
			Detail:     "response is not JSON: " + excerpt(body),
			Endpoint:   endpoint,
		}
	}
	if len(response.Detail) == 0 || string(response.Detail) == "null" {
		return "", &APIError{
			StatusCode: http.StatusOK,
			Detail:     "response has no detail field",
			Endpoint:   endpoint,
		}
	}
	var envelope string
	if err := json.Unmarshal(response.Detail, &envelope); err != nil {
		return "", &APIError{
			StatusCode: http.StatusOK,
			Detail:     "detail is not an envelope string: " + excerpt(response.Detail),
			Endpoint:   endpoint,
		}
	}
	return envelope, nil
}

// decryptEnvelope opens a transit envelope with the current bucket's
// key, retrying once with the previous bucket's key when the client
// opted in and the clock sits within the boundary window.
func (c *Client) decryptEnvelope(envelope string) (*payload.Value, error) {
	now := c.clock.Now()
	value, err := transit.Decrypt(envelope, c.credential, now, c.transit)
	if err == nil {
		return value, nil
	}
	if !c.decryptPreviousBucket || !transit.IsTransitError(err, transit.CodeDecryptionFailed) {
		return nil, err
	}
	if now.Unix()%c.transit.BucketSeconds >= previousBucketWindowSeconds {
		return nil, err
	}

	// The envelope may have been sealed an instant before the key
	// rotated. One step back, never forward: the server encrypted in
	// the past, not the future.
	bucket := transit.TimeBucket(now, c.transit.BucketSeconds)
	value, retryErr := transit.DecryptAtBucket(envelope, c.credential, bucket-1, c.transit)
	if retryErr != nil {
		// Report the original failure; the retry was a bonus attempt.
		return nil, err
	}
	c.logger.Debug("decrypted with previous bucket key", "bucket", bucket-1)
	return value, nil
}
