package cryptox

import (
	"bytes"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	password := []byte("secret1")
	salt := []byte("0123456789abcdef")

	key1 := DeriveKey(password, salt)
	key2 := DeriveKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != KeySize {
		t.Errorf("expected %d-byte key, got %d", KeySize, len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	password := []byte("secret1")
	salt1 := []byte("salt-aaaaaaaaaaa")
	salt2 := []byte("salt-bbbbbbbbbbb")

	key1 := DeriveKey(password, salt1)
	key2 := DeriveKey(password, salt2)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys for different salts, got same")
	}
}

func TestDeriveKey_DifferentPasswords(t *testing.T) {
	salt := []byte("0123456789abcdef")

	key1 := DeriveKey([]byte("secret1"), salt)
	key2 := DeriveKey([]byte("secret2"), salt)

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different keys for different passwords, got same")
	}
}

func TestHashPassword(t *testing.T) {
	// Known SHA-256 vector.
	got := HashPassword("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got != want {
		t.Errorf("HashPassword(abc) = %s, want %s", got, want)
	}

	if HashPassword("secret1") == HashPassword("secret2") {
		t.Errorf("distinct passwords hashed to same digest")
	}
}
