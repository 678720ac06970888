package security_test

import (
	"testing"

	"github.com/okoro-dev/realtyhub/internal/security"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := security.HashPassword("pw123456")

	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	if hash == "pw123456" {
		t.Fatal("hash must not equal the plaintext")
	}

	if err := security.CheckPassword(hash, "pw123456"); err != nil {
		t.Errorf("correct password should check: %v", err)
	}

	if err := security.CheckPassword(hash, "wrongpw"); err == nil {
		t.Error("wrong password should not check")
	}
}
