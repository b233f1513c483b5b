// Copyright 2026 The VaultAPI Authors
// SPDX-License-Identifier: MIT

package transit

import (
	"bytes"
	"crypto/sha256"
	"testing"
	"time"

	"github.com/thevickypedia/VaultAPI-Client/lib/secret"
)

// testCredential creates a deterministic API key for tests.
// NewFromBytes consumes its input, so each call builds a fresh slice.
func testCredential(t *testing.T) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte("k3yQ7vPzR2mW8sLxA1cD5fG9hJ4nB6tV"))
	if err != nil {
		t.Fatal(err)
	}
	return buffer
}

// testCredentialAlternate creates a different deterministic API key
// for testing that different credentials produce different keys.
func testCredentialAlternate(t *testing.T) *secret.Buffer {
	t.Helper()
	buffer, err := secret.NewFromBytes([]byte("zZ9yX8wV7uT6sR5qP4oN3mL2kJ1hG0fE"))
	if err != nil {
		t.Fatal(err)
	}
	return buffer
}

// --- Bucket tests ---

func TestTimeBucket(t *testing.T) {
	tests := []struct {
		name          string
		unixSeconds   int64
		bucketSeconds int64
		want          int64
	}{
		{"epoch", 0, 60, 0},
		{"last second of first bucket", 59, 60, 0},
		{"first second of second bucket", 60, 60, 1},
		{"last second of second bucket", 119, 60, 1},
		{"third bucket", 120, 60, 2},
		{"one-second buckets are the unix second", 1700000000, 1, 1700000000},
		{"five-minute buckets", 1700000000, 300, 5666666},
		{"wide bucket", 1700000299, 300, 5666667},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := TimeBucket(time.Unix(test.unixSeconds, 0), test.bucketSeconds)
			if got != test.want {
				t.Errorf("TimeBucket(%d, %d) = %d, want %d",
					test.unixSeconds, test.bucketSeconds, got, test.want)
			}
		})
	}
}

func TestTimeBucketIgnoresSubSecond(t *testing.T) {
	// 59.999... seconds is still the first bucket; the protocol works
	// in whole Unix seconds.
	got := TimeBucket(time.Unix(59, 999_999_999), 60)
	if got != 0 {
		t.Errorf("TimeBucket(59.999..., 60) = %d, want 0", got)
	}
}

// --- Key derivation tests ---

func TestDeriveKeyDeterministic(t *testing.T) {
	credential := testCredential(t)
	defer credential.Close()

	key1, err := DeriveKey(credential, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key1.Close()

	key2, err := DeriveKey(credential, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key2.Close()

	if !key1.Equal(key2) {
		t.Error("same credential + same bucket should produce identical keys")
	}
}

func TestDeriveKeyVariesWithBucket(t *testing.T) {
	credential := testCredential(t)
	defer credential.Close()

	key1, err := DeriveKey(credential, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key1.Close()

	key2, err := DeriveKey(credential, 28333334, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key2.Close()

	if key1.Equal(key2) {
		t.Error("adjacent buckets should produce different keys")
	}
}

func TestDeriveKeyVariesWithCredential(t *testing.T) {
	credential1 := testCredential(t)
	defer credential1.Close()
	credential2 := testCredentialAlternate(t)
	defer credential2.Close()

	key1, err := DeriveKey(credential1, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key1.Close()

	key2, err := DeriveKey(credential2, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key2.Close()

	if key1.Equal(key2) {
		t.Error("different credentials should produce different keys")
	}
}

func TestDeriveKeyKnownAnswer(t *testing.T) {
	// The key schedule is SHA-256 over the exact byte string
	// "<decimal bucket>.<credential>". Any drift here breaks
	// interoperability with the server, so pin it.
	credential := testCredential(t)
	defer credential.Close()

	key, err := DeriveKey(credential, 28333333, DefaultKeyLength)
	if err != nil {
		t.Fatal(err)
	}
	defer key.Close()

	want := sha256.Sum256([]byte("28333333.k3yQ7vPzR2mW8sLxA1cD5fG9hJ4nB6tV"))
	if !bytes.Equal(key.Bytes(), want[:]) {
		t.Error("derived key does not match SHA-256 of \"<bucket>.<credential>\"")
	}
}

func TestDeriveKeyTruncationIsPrefix(t *testing.T) {
	credential := testCredential(t)
	defer credential.Close()

	full, err := DeriveKey(credential, 28333333, 32)
	if err != nil {
		t.Fatal(err)
	}
	defer full.Close()

	for _, length := range []int{1, 16, 24, 31} {
		short, err := DeriveKey(credential, 28333333, length)
		if err != nil {
			t.Fatalf("DeriveKey length %d: %v", length, err)
		}
		if short.Len() != length {
			t.Errorf("derived key length = %d, want %d", short.Len(), length)
		}
		if !bytes.Equal(short.Bytes(), full.Bytes()[:length]) {
			t.Errorf("truncated key (length %d) is not a prefix of the full digest", length)
		}
		short.Close()
	}
}

func TestDeriveKeyRejectsBadLength(t *testing.T) {
	credential := testCredential(t)
	defer credential.Close()

	for _, length := range []int{-1, 0, 33, 64} {
		_, err := DeriveKey(credential, 28333333, length)
		if !IsTransitError(err, CodeKeyConstructionFailed) {
			t.Errorf("DeriveKey length %d: error = %v, want %s", length, err, CodeKeyConstructionFailed)
		}
	}
}

func TestDeriveKeyRejectsNilCredential(t *testing.T) {
	_, err := DeriveKey(nil, 28333333, DefaultKeyLength)
	if !IsTransitError(err, CodeKeyConstructionFailed) {
		t.Errorf("DeriveKey(nil credential): error = %v, want %s", err, CodeKeyConstructionFailed)
	}
}

// --- Benchmarks ---

func BenchmarkDeriveKey(b *testing.B) {
	credential, err := secret.NewFromBytes([]byte("k3yQ7vPzR2mW8sLxA1cD5fG9hJ4nB6tV"))
	if err != nil {
		b.Fatal(err)
	}
	defer credential.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key, err := DeriveKey(credential, int64(i), DefaultKeyLength)
		if err != nil {
			b.Fatal(err)
		}
		key.Close()
	}
}
