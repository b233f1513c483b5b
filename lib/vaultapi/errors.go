// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package vaultapi

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the VaultAPI
// server, or a 2xx response whose shape the client cannot use.
// Callers can use errors.As to extract the structured information:
//
//	var apiErr *vaultapi.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.StatusCode == http.StatusNotFound { ... }
//	}
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Detail is the server's error description, from the "detail"
	// field when the body parses, otherwise a bounded body excerpt.
	Detail string
	// Endpoint is the request that failed, e.g. "GET /get-secret".
	Endpoint string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vaultapi: %s returned %d: %s", e.Endpoint, e.StatusCode, e.Detail)
}

// IsAPIError reports whether err is an *APIError with one of the
// given HTTP status codes. With no codes, it matches any API error.
func IsAPIError(err error, statusCodes ...int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if len(statusCodes) == 0 {
		return true
	}
	for _, code := range statusCodes {
		if apiErr.StatusCode == code {
			return true
		}
	}
	return false
}

// RequestError is a transport-level failure: the request never got a
// response (connection refused, DNS, TLS, timeout). The server state
// is unknown; the doctor command distinguishes these from APIError to
// separate "server unreachable" from "server rejected".
type RequestError struct {
	// Endpoint is the request that failed, e.g. "GET /get-secret".
	Endpoint string

	cause error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("vaultapi: request to %s failed: %v", e.Endpoint, e.cause)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error { return e.cause }
