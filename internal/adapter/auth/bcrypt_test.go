package auth

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hash, err := h.Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatalf("hash must not equal the password")
	}
	if !h.Compare(hash, "s3cret-pass") {
		t.Fatalf("expected password to match")
	}
	if h.Compare(hash, "wrong") {
		t.Fatalf("expected wrong password to be rejected")
	}
}

func TestNewBcryptHasherFallsBackToDefaultCost(t *testing.T) {
	if h := NewBcryptHasher(0); h.cost != bcrypt.DefaultCost {
		t.Fatalf("expected default cost, got %d", h.cost)
	}
}
