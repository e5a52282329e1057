// Package common contains shared sentinel errors and small helpers used
// across client and relay layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound = errors.New("not found")

	// User input that fails a precondition (missing field, bad email, ...).
	ErrValidation = errors.New("validation error")

	// Wrong password, bad signature, expired timestamp or session.
	ErrUnauthorized = errors.New("unauthorized")

	// Protected data was requested while no derived key is in scope.
	// The caller must force a re-authentication flow, not retry.
	ErrKeyUnavailable = errors.New("encryption key unavailable")

	// Authentication tag mismatch: wrong key, corrupted or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed")

	// The downstream sink rejected the event or was unreachable.
	ErrDownstream = errors.New("downstream error")
)
