// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package sealed

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testIdentity(t *testing.T) *Identity {
	t.Helper()
	identity, err := GenerateIdentity()
	if err != nil {
		t.Fatalf("GenerateIdentity() error: %v", err)
	}
	t.Cleanup(func() { identity.Close() })
	return identity
}

func TestGenerateIdentity(t *testing.T) {
	identity := testIdentity(t)

	if !strings.HasPrefix(identity.Key.String(), "AGE-SECRET-KEY-1") {
		t.Error("identity key does not have the AGE-SECRET-KEY-1 prefix")
	}
	if !strings.HasPrefix(identity.Recipient, "age1") {
		t.Errorf("Recipient = %q, want prefix age1", identity.Recipient)
	}
}

func TestGenerateIdentity_Unique(t *testing.T) {
	first := testIdentity(t)
	second := testIdentity(t)

	if first.Key.Equal(second.Key) {
		t.Error("two generated identities have identical keys")
	}
	if first.Recipient == second.Recipient {
		t.Error("two generated identities have identical recipients")
	}
}

func TestEncryptDecrypt_SingleRecipient(t *testing.T) {
	identity := testIdentity(t)

	plaintext := []byte("DB_PASSWORD=hunter2\nAPI_TOKEN=abc123\n")
	ciphertext, err := Encrypt(plaintext, []string{identity.Recipient})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := base64.StdEncoding.DecodeString(ciphertext); err != nil {
		t.Errorf("Encrypt() returned invalid base64: %v", err)
	}

	decrypted, err := Decrypt(ciphertext, identity.Key)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	defer decrypted.Close()

	if decrypted.String() != string(plaintext) {
		t.Errorf("Decrypt() = %q, want %q", decrypted.String(), plaintext)
	}
}

func TestEncryptDecrypt_MultipleRecipients(t *testing.T) {
	// A sealed export typically goes to the receiving machine's key
	// plus the operator's own.
	machine := testIdentity(t)
	operator := testIdentity(t)

	plaintext := `{"SMTP_URL":"smtp://mail.example.com"}`
	ciphertext, err := Encrypt([]byte(plaintext), []string{machine.Recipient, operator.Recipient})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	for name, identity := range map[string]*Identity{"machine": machine, "operator": operator} {
		decrypted, err := Decrypt(ciphertext, identity.Key)
		if err != nil {
			t.Fatalf("Decrypt(%s) error: %v", name, err)
		}
		if decrypted.String() != plaintext {
			t.Errorf("Decrypt(%s) = %q, want %q", name, decrypted.String(), plaintext)
		}
		decrypted.Close()
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	identity := testIdentity(t)
	wrong := testIdentity(t)

	ciphertext, err := Encrypt([]byte("secret data"), []string{identity.Recipient})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	if _, err := Decrypt(ciphertext, wrong.Key); err == nil {
		t.Error("Decrypt() with the wrong key should return an error")
	}
}

func TestDecrypt_TrimsWhitespace(t *testing.T) {
	// Sealed files read back from disk usually carry a trailing
	// newline.
	identity := testIdentity(t)

	ciphertext, err := Encrypt([]byte("payload"), []string{identity.Recipient})
	if err != nil {
		t.Fatalf("Encrypt() error: %v", err)
	}

	decrypted, err := Decrypt("\n  "+ciphertext+"\n", identity.Key)
	if err != nil {
		t.Fatalf("Decrypt() error: %v", err)
	}
	defer decrypted.Close()

	if decrypted.String() != "payload" {
		t.Errorf("Decrypt() = %q, want %q", decrypted.String(), "payload")
	}
}

func TestEncrypt_NoRecipients(t *testing.T) {
	if _, err := Encrypt([]byte("data"), nil); err == nil {
		t.Error("Encrypt() with no recipients should return an error")
	}

	_, err := Encrypt([]byte("data"), []string{})
	if err == nil {
		t.Fatal("Encrypt() with empty recipients should return an error")
	}
	if !strings.Contains(err.Error(), "at least one recipient") {
		t.Errorf("error = %v, want 'at least one recipient'", err)
	}
}

func TestEncrypt_InvalidRecipientKey(t *testing.T) {
	_, err := Encrypt([]byte("data"), []string{"not-a-valid-key"})
	if err == nil {
		t.Fatal("Encrypt() with an invalid recipient should return an error")
	}
	if !strings.Contains(err.Error(), "parsing recipient key") {
		t.Errorf("error = %v, want 'parsing recipient key'", err)
	}
}

func TestDecrypt_InvalidBase64(t *testing.T) {
	identity := testIdentity(t)

	_, err := Decrypt("not-valid-base64!!!", identity.Key)
	if err == nil {
		t.Fatal("Decrypt() with invalid base64 should return an error")
	}
	if !strings.Contains(err.Error(), "decoding base64") {
		t.Errorf("error = %v, want 'decoding base64'", err)
	}
}

func TestDecrypt_CorruptedCiphertext(t *testing.T) {
	identity := testIdentity(t)

	// Valid base64 but not valid age ciphertext.
	corrupted := base64.StdEncoding.EncodeToString([]byte("this is not age ciphertext"))

	if _, err := Decrypt(corrupted, identity.Key); err == nil {
		t.Error("Decrypt() with corrupted ciphertext should return an error")
	}
}

func TestParseRecipient(t *testing.T) {
	identity := testIdentity(t)

	if err := ParseRecipient(identity.Recipient); err != nil {
		t.Errorf("ParseRecipient(%q) error: %v", identity.Recipient, err)
	}
	if err := ParseRecipient("age1notavalidkey"); err == nil {
		t.Error("ParseRecipient should reject a malformed key")
	}
	if err := ParseRecipient(""); err == nil {
		t.Error("ParseRecipient should reject an empty key")
	}
}

// --- identity file tests ---

func TestIdentityFileRoundtrip(t *testing.T) {
	identity := testIdentity(t)
	path := filepath.Join(t.TempDir(), "identity.txt")

	if err := identity.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		t.Errorf("identity file mode = %o, want 600", mode)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "# public key: "+identity.Recipient) {
		t.Error("identity file missing the public key comment")
	}

	key, err := ReadIdentityFile(path)
	if err != nil {
		t.Fatalf("ReadIdentityFile: %v", err)
	}
	defer key.Close()

	if !key.Equal(identity.Key) {
		t.Error("key read from file differs from the generated key")
	}
}

func TestWriteFileRefusesOverwrite(t *testing.T) {
	identity := testIdentity(t)
	path := filepath.Join(t.TempDir(), "identity.txt")

	if err := identity.WriteFile(path); err != nil {
		t.Fatalf("first WriteFile: %v", err)
	}
	if err := identity.WriteFile(path); err == nil {
		t.Error("WriteFile should refuse to overwrite an existing identity file")
	}
}

func TestReadIdentityFile_AgeKeygenFormat(t *testing.T) {
	// age-keygen output: comments, blank line tolerance, CRLF
	// tolerance.
	identity := testIdentity(t)
	path := filepath.Join(t.TempDir(), "keys.txt")

	content := "# created: 2026-08-24T10:00:00Z\r\n# public key: " +
		identity.Recipient + "\r\n\r\n" + identity.Key.String() + "\r\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	key, err := ReadIdentityFile(path)
	if err != nil {
		t.Fatalf("ReadIdentityFile: %v", err)
	}
	defer key.Close()

	if !key.Equal(identity.Key) {
		t.Error("key read from age-keygen format differs from the generated key")
	}
}

func TestReadIdentityFile_NoKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(path, []byte("# just a comment\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := ReadIdentityFile(path)
	if err == nil {
		t.Fatal("ReadIdentityFile should fail when no key line is present")
	}
	if !strings.Contains(err.Error(), "no AGE-SECRET-KEY-1 line") {
		t.Errorf("error = %v, want 'no AGE-SECRET-KEY-1 line'", err)
	}
}

func TestReadIdentityFile_InvalidKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.txt")
	if err := os.WriteFile(path, []byte("AGE-SECRET-KEY-1NOTREAL\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadIdentityFile(path); err == nil {
		t.Error("ReadIdentityFile should reject an invalid key line")
	}
}

func TestReadIdentityFile_Missing(t *testing.T) {
	if _, err := ReadIdentityFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("ReadIdentityFile should fail for a missing file")
	}
}
