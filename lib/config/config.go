// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

// Package config provides configuration loading for the VaultAPI
// client.
//
// Configuration is loaded from a single YAML file specified by:
//   - the --config flag passed to the command, or
//   - the VAULTAPI_CONFIG environment variable, or
//   - $XDG_CONFIG_HOME/vaultapi/config.yaml, when it exists.
//
// When none of those name a file, the built-in defaults apply. There
// is no merging across locations and no environment-variable override
// of individual values: one file wins, so the effective configuration
// is always auditable. Unknown fields in the file are errors — a typo
// fails loudly instead of silently meaning the default.
//
// The file never contains the API credential. Credentials come from
// the session file, the VAULTAPI_KEY environment variable, or an
// explicit key file (see the login command).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thevickypedia/VaultAPI-Client/lib/transit"
)

// DefaultTimeout is the request timeout when the file sets none.
const DefaultTimeout = 30 * time.Second

// Config is the client configuration.
type Config struct {
	// ServerURL is the base URL of the VaultAPI server. Optional
	// here: commands also accept it via flag or session file, and
	// fail with guidance when it is set nowhere.
	ServerURL string `yaml:"server_url"`

	// Table is the default table name for commands that take one.
	Table string `yaml:"table"`

	// Timeout bounds each HTTP request, as a duration string
	// ("30s", "2m"). Default 30s.
	Timeout string `yaml:"timeout"`

	// Transit overrides the protocol parameters. Both sides must
	// agree; leave at defaults unless the server was deployed with
	// matching overrides.
	Transit TransitConfig `yaml:"transit"`

	// DecryptPreviousBucket opts in to a single decrypt retry with
	// the previous bucket's key near bucket boundaries.
	DecryptPreviousBucket bool `yaml:"decrypt_previous_bucket"`
}

// TransitConfig holds the transit protocol parameters.
type TransitConfig struct {
	// KeyLength is the derived AES key length in bytes, 1..32.
	KeyLength int `yaml:"key_length"`
	// BucketSeconds is the key rotation interval in seconds.
	BucketSeconds int64 `yaml:"bucket_seconds"`
}

// Default returns the built-in defaults: 60-second buckets, full
// 32-byte keys, 30-second request timeout, table "default".
func Default() *Config {
	return &Config{
		Table:   "default",
		Timeout: "30s",
		Transit: TransitConfig{
			KeyLength:     transit.DefaultKeyLength,
			BucketSeconds: transit.DefaultBucketSeconds,
		},
	}
}

// DefaultPath returns the well-known config file location:
// $XDG_CONFIG_HOME/vaultapi/config.yaml, falling back to
// ~/.config/vaultapi/config.yaml.
func DefaultPath() string {
	configDirectory := os.Getenv("XDG_CONFIG_HOME")
	if configDirectory == "" {
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			// Fallback — this should rarely happen.
			return filepath.Join("/tmp", "vaultapi-config.yaml")
		}
		configDirectory = filepath.Join(homeDirectory, ".config")
	}
	return filepath.Join(configDirectory, "vaultapi", "config.yaml")
}

// ResolvePath returns the config file path Load would read: the
// explicit path when given, then $VAULTAPI_CONFIG, then the well-known
// path when that file exists. Empty means Load would use built-in
// defaults. Doctor uses this to report where configuration came from.
func ResolvePath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}
	if envPath := os.Getenv("VAULTAPI_CONFIG"); envPath != "" {
		return envPath
	}
	wellKnown := DefaultPath()
	if _, err := os.Stat(wellKnown); err == nil {
		return wellKnown
	}
	return ""
}

// Load resolves and loads the configuration. An explicit path (from
// the --config flag) wins; then VAULTAPI_CONFIG; then the well-known
// path when the file exists; otherwise the built-in defaults.
func Load(explicitPath string) (*Config, error) {
	if path := ResolvePath(explicitPath); path != "" {
		return LoadFile(path)
	}
	return Default(), nil
}

// LoadFile loads configuration from a specific file path. Fields the
// file omits keep their defaults; fields the schema does not define
// are errors.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerURL != "" {
		parsed, err := url.Parse(c.ServerURL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("server_url %q must be an http or https URL", c.ServerURL))
		}
	}

	if c.Transit.KeyLength < 1 || c.Transit.KeyLength > transit.MaxKeyLength {
		errs = append(errs, fmt.Errorf("transit.key_length %d must be within 1..%d",
			c.Transit.KeyLength, transit.MaxKeyLength))
	}
	if c.Transit.BucketSeconds <= 0 {
		errs = append(errs, fmt.Errorf("transit.bucket_seconds %d must be positive", c.Transit.BucketSeconds))
	}

	if c.Timeout != "" {
		duration, err := time.ParseDuration(c.Timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("timeout %q is not a duration", c.Timeout))
		} else if duration <= 0 {
			errs = append(errs, fmt.Errorf("timeout %q must be positive", c.Timeout))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// RequestTimeout returns the parsed request timeout. Validate has
// already vetted the string; anything unparseable falls back to the
// default.
func (c *Config) RequestTimeout() time.Duration {
	duration, err := time.ParseDuration(c.Timeout)
	if err != nil || duration <= 0 {
		return DefaultTimeout
	}
	return duration
}

// TransitParams returns the transit parameters in protocol form.
func (c *Config) TransitParams() transit.Params {
	return transit.Params{
		KeyLength:     c.Transit.KeyLength,
		BucketSeconds: c.Transit.BucketSeconds,
	}
}
