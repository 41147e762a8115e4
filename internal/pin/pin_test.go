package pin

import (
	"errors"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("4321")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "4321" {
		t.Fatal("hash must not be the plaintext pin")
	}

	if err := Verify(hash, "4321"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if err := Verify(hash, "0000"); !errors.Is(err, ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}
