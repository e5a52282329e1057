// Package signing implements the signed-event protocol shared by the client
// and the edge relay: a canonical JSON payload, an HMAC-SHA256 signature in
// lowercase hex, and a staleness window on the embedded timestamp.
//
// Both sides import this package, so the canonical serialization cannot
// drift between signer and verifier.
package signing

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// MaxTimestampSkew is the replay/staleness window. A payload whose timestamp
// differs from the relay clock by more than this is rejected.
const MaxTimestampSkew = 60_000 * time.Millisecond

// Payload is the signing input: exactly these three fields, in this order.
// Timestamp is Unix milliseconds. Data keeps the caller's raw JSON bytes so
// re-serialization does not reorder object keys.
type Payload struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// SignedPayload is the wire object: the payload fields plus an appended
// signature. The signature field is never part of the signing input.
type SignedPayload struct {
	Payload
	Signature string `json:"signature"`
}

// Canonical returns the exact byte serialization the signature covers.
func Canonical(p Payload) ([]byte, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("canonical payload: %w", err)
	}
	return b, nil
}

// Sign computes the lowercase-hex HMAC-SHA256 of the canonical payload.
func Sign(p Payload, secret []byte) (string, error) {
	msg, err := Canonical(p)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(msg)
	return hex.EncodeToString(mac.Sum(nil)), nil
}

// Verify recomputes the signature over the payload fields of sp and compares
// it to sp.Signature in constant time. A missing signature fails outright;
// it is never treated as "unsigned but trusted". A zero-length secret never
// verifies.
func Verify(sp SignedPayload, secret []byte) bool {
	if sp.Signature == "" || len(secret) == 0 {
		return false
	}
	expected, err := Sign(sp.Payload, secret)
	if err != nil {
		return false
	}
	if len(expected) != len(sp.Signature) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(sp.Signature)) == 1
}

// CheckTimestamp reports whether a payload timestamp (Unix milliseconds)
// falls within MaxTimestampSkew of now, in either direction.
func CheckTimestamp(now time.Time, timestampMillis int64) bool {
	diff := now.Sub(time.UnixMilli(timestampMillis))
	if diff < 0 {
		diff = -diff
	}
	return diff <= MaxTimestampSkew
}
