package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/evolveua/queuevault/internal/common"
)

const (
	// NonceSize is the AES-GCM nonce length, freshly random per Seal call.
	NonceSize = 12
	// EnvelopeVersion is the current envelope format version.
	EnvelopeVersion = 1
)

// Envelope is the unit of protected storage: a versioned container for a
// random nonce and AES-GCM ciphertext, with base64 text encodings so it can
// live inside any string-valued storage substrate.
type Envelope struct {
	Encrypted  bool   `json:"enc"`
	Version    int    `json:"v"`
	Nonce      string `json:"iv"`
	Ciphertext string `json:"data"`
}

// Seal serializes value to JSON and encrypts it with AES-256-GCM under key.
// A fresh 12-byte nonce is generated on every call; nonces are never reused
// under the same key.
func Seal(key []byte, value any) (*Envelope, error) {
	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("envelope seal: %w", err)
	}

	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("envelope seal: %w", err)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	ciphertext := aesgcm.Seal(nil, nonce, plaintext, nil)

	return &Envelope{
		Encrypted:  true,
		Version:    EnvelopeVersion,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Open decrypts an envelope and unmarshals the plaintext JSON into v.
// Any authentication failure (wrong key, flipped bits in nonce or
// ciphertext, unknown format version) yields common.ErrDecryptionFailed;
// callers must never treat partial output as valid.
func Open(key []byte, env *Envelope, v any) error {
	if env.Version != EnvelopeVersion {
		return fmt.Errorf("envelope version %d: %w", env.Version, common.ErrDecryptionFailed)
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil || len(nonce) != NonceSize {
		return fmt.Errorf("envelope nonce: %w", common.ErrDecryptionFailed)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return fmt.Errorf("envelope ciphertext: %w", common.ErrDecryptionFailed)
	}

	aesgcm, err := newGCM(key)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return fmt.Errorf("envelope open: %w", common.ErrDecryptionFailed)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("envelope decode: %w", err)
	}
	return nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("envelope cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("envelope cipher: %w", err)
	}
	return aesgcm, nil
}
