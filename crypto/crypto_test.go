// SPDX-License-Identifier: GPL-3.0-only

package crypto

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestCrypto(t *testing.T) *Crypto {
	t.Helper()
	t.Setenv("ARGON2_MEMORY", "1024")
	return NewCrypto()
}

func TestHashPassword(t *testing.T) {
	crypto := newTestCrypto(t)
	password := "testpassword123"

	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	if hash == "" {
		t.Error("Hash should not be empty")
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("Expected an argon2id digest, got %s", hash)
	}

	hash2, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("Second HashPassword failed: %v", err)
	}

	if hash == hash2 {
		t.Error("Two hashes of same password should be different (due to salt)")
	}
}

func TestVerifyPassword(t *testing.T) {
	crypto := newTestCrypto(t)
	password := "testpassword123"
	wrongPassword := "wrongpassword"

	hash, err := crypto.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	err = crypto.VerifyPassword(password, hash)
	if err != nil {
		t.Errorf("VerifyPassword failed for correct password: %v", err)
	}

	err = crypto.VerifyPassword(wrongPassword, hash)
	if !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("VerifyPassword should fail with ErrPasswordMismatch for wrong password, got %v", err)
	}

	err = crypto.VerifyPassword(password, "invalid-hash")
	if err == nil {
		t.Error("VerifyPassword should fail for invalid hash")
	}
}

func TestVerifyLegacyBcryptPassword(t *testing.T) {
	crypto := newTestCrypto(t)

	legacy, err := bcrypt.GenerateFromPassword([]byte("pw1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}

	if !NeedsRehash(string(legacy)) {
		t.Error("bcrypt digest should be reported as needing a rehash")
	}

	if err := crypto.VerifyPassword("pw1", string(legacy)); err != nil {
		t.Errorf("VerifyPassword failed for legacy digest: %v", err)
	}

	if err := crypto.VerifyPassword("pw2", string(legacy)); !errors.Is(err, ErrPasswordMismatch) {
		t.Errorf("Expected ErrPasswordMismatch for wrong legacy password, got %v", err)
	}
}

func TestGenerateRandomString(t *testing.T) {
	token, err := GenerateRandomString("prt_", 32, "hex")
	if err != nil {
		t.Fatalf("GenerateRandomString failed: %v", err)
	}

	if !strings.HasPrefix(token, "prt_") {
		t.Errorf("Expected prefix prt_, got %s", token)
	}

	if len(token) != len("prt_")+64 {
		t.Errorf("Expected 68 characters, got %d", len(token))
	}

	other, err := GenerateRandomString("prt_", 32, "hex")
	if err != nil {
		t.Fatalf("Second GenerateRandomString failed: %v", err)
	}

	if token == other {
		t.Error("Two random strings should differ")
	}

	if _, err := GenerateRandomString("", 8, "base32"); err == nil {
		t.Error("GenerateRandomString should fail for unsupported encoding")
	}
}
