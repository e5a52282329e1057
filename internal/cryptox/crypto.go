// Package cryptox implements the client-side confidentiality primitives:
// password hashing, password-based key derivation, and the versioned
// envelope format used to store encrypted JSON values.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the per-user salt length, generated once at account creation.
	SaltSize = 16
	// KeySize is the derived AES-256 key length.
	KeySize = 32
	// KDFIterations is the PBKDF2 iteration count.
	KDFIterations = 100_000
)

// HashPassword returns the lowercase hex SHA-256 digest of the password.
// This is the stored one-way credential check; it is intentionally distinct
// from the encryption key, which is derived with DeriveKey.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// DeriveKey stretches a password into a 256-bit symmetric key using
// PBKDF2-SHA256. The same (password, salt) pair always yields the same key;
// distinct salts yield unrelated keys for identical passwords.
//
// The caller owns the returned slice and should wipe it when the session
// ends (common.WipeByteArray).
func DeriveKey(password []byte, salt []byte) []byte {
	return pbkdf2.Key(password, salt, KDFIterations, KeySize, sha256.New)
}
