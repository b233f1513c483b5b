// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_StringField(t *testing.T) {
	type params struct {
		Table string `flag:"table" desc:"table name"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	if err := flagSet.Parse([]string{"--table", "production"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Table != "production" {
		t.Errorf("Table = %q, want %q", p.Table, "production")
	}
}

func TestBindFlags_BoolField(t *testing.T) {
	type params struct {
		Pretty bool `flag:"pretty" desc:"syntax highlighting"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	if err := flagSet.Parse([]string{"--pretty"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !p.Pretty {
		t.Error("Pretty = false, want true")
	}
}

func TestBindFlags_IntField(t *testing.T) {
	type params struct {
		KeyLength int `flag:"key-length" desc:"derived key length"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	if err := flagSet.Parse([]string{"--key-length", "16"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.KeyLength != 16 {
		t.Errorf("KeyLength = %d, want 16", p.KeyLength)
	}
}

func TestBindFlags_DurationField(t *testing.T) {
	type params struct {
		Timeout time.Duration `flag:"timeout" desc:"request timeout"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	if err := flagSet.Parse([]string{"--timeout", "45s"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", p.Timeout)
	}
}

func TestBindFlags_StringSliceField(t *testing.T) {
	type params struct {
		SealTo []string `flag:"seal-to" desc:"age recipients"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	args := []string{"--seal-to", "age1abc", "--seal-to", "age1def"}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(p.SealTo) != 2 || p.SealTo[0] != "age1abc" || p.SealTo[1] != "age1def" {
		t.Errorf("SealTo = %v, want [age1abc age1def]", p.SealTo)
	}
}

func TestBindFlags_Defaults(t *testing.T) {
	type params struct {
		Table   string        `flag:"table" desc:"table name" default:"default"`
		Format  string        `flag:"format" desc:"output format" default:"env"`
		Timeout time.Duration `flag:"timeout" desc:"request timeout" default:"30s"`
		Retries int           `flag:"retries" desc:"retry count" default:"3"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	// Parse nothing; defaults must take effect.
	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Table != "default" {
		t.Errorf("Table default = %q, want %q", p.Table, "default")
	}
	if p.Format != "env" {
		t.Errorf("Format default = %q, want %q", p.Format, "env")
	}
	if p.Timeout != 30*time.Second {
		t.Errorf("Timeout default = %v, want 30s", p.Timeout)
	}
	if p.Retries != 3 {
		t.Errorf("Retries default = %d, want 3", p.Retries)
	}
}

func TestBindFlags_ShortFlag(t *testing.T) {
	type params struct {
		Output string `flag:"output,o" desc:"output format"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	if err := flagSet.Parse([]string{"-o", "json"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Output != "json" {
		t.Errorf("Output = %q, want %q", p.Output, "json")
	}
}

func TestBindFlags_EmbeddedStruct(t *testing.T) {
	type inner struct {
		Server string `flag:"server" desc:"server URL"`
	}
	type outer struct {
		inner
		Table string `flag:"table" desc:"table name"`
	}
	var p outer
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	args := []string{"--server", "https://vault.example.com", "--table", "shared"}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Server != "https://vault.example.com" {
		t.Errorf("Server = %q, want embedded flag bound", p.Server)
	}
	if p.Table != "shared" {
		t.Errorf("Table = %q, want %q", p.Table, "shared")
	}
}

func TestBindFlags_SkipsUntaggedFields(t *testing.T) {
	type params struct {
		Table    string `flag:"table" desc:"table name"`
		internal string
		Ignored  string
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	count := 0
	flagSet.VisitAll(func(*pflag.Flag) { count++ })
	if count != 1 {
		t.Errorf("bound %d flags, want 1 (only tagged fields)", count)
	}
	_ = p.internal
	_ = p.Ignored
}

func TestBindFlags_PanicsOnNonPointer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("BindFlags(non-pointer) did not panic")
		}
	}()
	type params struct{}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(params{}, flagSet)
}

func TestBindFlags_PanicsOnNonStruct(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("BindFlags(*int) did not panic")
		}
	}()
	value := 42
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&value, flagSet)
}

// ClientParams is the shared connection block embedded by most
// commands; it implements FlagBinder so its flags appear wherever it
// is embedded.
func TestBindFlags_ClientParamsFlagBinder(t *testing.T) {
	type params struct {
		ClientParams
		Table string `flag:"table" desc:"table name"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(&p, flagSet)

	for _, name := range []string{"server", "apikey-file", "config", "table"} {
		if flagSet.Lookup(name) == nil {
			t.Errorf("flag --%s not registered", name)
		}
	}

	args := []string{
		"--server", "https://vault.example.com",
		"--apikey-file", "/run/secrets/vault-key",
		"--config", "/etc/vaultapi/config.yaml",
	}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Server != "https://vault.example.com" {
		t.Errorf("Server = %q", p.Server)
	}
	if p.APIKeyFile != "/run/secrets/vault-key" {
		t.Errorf("APIKeyFile = %q", p.APIKeyFile)
	}
	if p.ConfigPath != "/etc/vaultapi/config.yaml" {
		t.Errorf("ConfigPath = %q", p.ConfigPath)
	}
}

func TestFlagsFromParams(t *testing.T) {
	type params struct {
		Table string `flag:"table" desc:"table name" default:"default"`
	}
	var p params

	flagSet := FlagsFromParams("get", &p)
	if flagSet == nil {
		t.Fatal("FlagsFromParams() = nil")
	}
	flag := flagSet.Lookup("table")
	if flag == nil {
		t.Fatal("flag --table not registered")
	}
	if flag.DefValue != "default" {
		t.Errorf("DefValue = %q, want %q", flag.DefValue, "default")
	}
	if flag.Usage != "table name" {
		t.Errorf("Usage = %q, want %q", flag.Usage, "table name")
	}
}
