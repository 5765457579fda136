package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/sakif/pokedex-api/internal/apperror"
)

// =========================================================================
// Hash TESTS
// =========================================================================

func TestHash_OutputLooksBcrypt(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("pikachu-123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !strings.HasPrefix(hash, "$2") {
		t.Errorf("Hash() does not look like a bcrypt hash: %q", hash)
	}
	if strings.Contains(hash, "pikachu-123") {
		t.Error("Hash() output contains the plaintext")
	}
}

func TestHash_SamePasswordProducesDifferentHashes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash1, _ := ps.Hash("same-password")
	hash2, _ := ps.Hash("same-password")

	if hash1 == hash2 {
		t.Error("Hash() produced identical hashes for the same password (salt must be random)")
	}
}

func TestHash_RejectsPasswordOver72Bytes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	_, err := ps.Hash(strings.Repeat("a", 73))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Fatalf("Hash() error = %v, want ErrValidation", err)
	}
}

func TestHash_AcceptsPasswordExactly72Bytes(t *testing.T) {
	ps := NewPasswordServiceForTest()

	if _, err := ps.Hash(strings.Repeat("a", 72)); err != nil {
		t.Fatalf("Hash() should accept a 72-byte password, got error: %v", err)
	}
}

func TestNewPasswordService_OutOfRangeCostFallsBack(t *testing.T) {
	if got := NewPasswordService(99).cost; got != DefaultCost {
		t.Errorf("cost = %d, want %d", got, DefaultCost)
	}
	if got := NewPasswordService(1).cost; got != DefaultCost {
		t.Errorf("cost = %d, want %d", got, DefaultCost)
	}
	if got := NewPasswordService(10).cost; got != 10 {
		t.Errorf("cost = %d, want 10", got)
	}
}

// =========================================================================
// Verify TESTS
// =========================================================================

func TestVerify_CorrectPassword(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, err := ps.Hash("correct horse")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	if !ps.Verify("correct horse", hash) {
		t.Error("Verify() = false for the correct password")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest()

	hash, _ := ps.Hash("correct horse")

	if ps.Verify("battery staple", hash) {
		t.Error("Verify() = true for the wrong password")
	}
	if ps.Verify("", hash) {
		t.Error("Verify() = true for an empty password")
	}
}

func TestVerify_MalformedHashIsFalse(t *testing.T) {
	ps := NewPasswordServiceForTest()

	for _, hash := range []string{"", "not-a-hash", "$2a$04$short"} {
		if ps.Verify("anything", hash) {
			t.Errorf("Verify(%q) = true, want false", hash)
		}
	}
}

func TestVerify_HashFromDifferentCost(t *testing.T) {
	// Cost lives in the hash, so a service at another cost can still verify.
	low := NewPasswordServiceForTest()
	hash, _ := low.Hash("cross-cost")

	other := NewPasswordService(5)
	if !other.Verify("cross-cost", hash) {
		t.Error("Verify() = false for a hash produced at a different cost")
	}
}
